package services

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog/log"
)

type snapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// SnapRedirector hands bank transfers to Midtrans Snap instead of the
// backend's VNPay endpoint.
type SnapRedirector struct {
	client    snapClient
	finishURL string
}

func NewSnapRedirector(client snapClient, appURL string) *SnapRedirector {
	return &SnapRedirector{client: client, finishURL: appURL + "/order-confirmation"}
}

func (s *SnapRedirector) Redirect(_ context.Context, order models.OrderPayload) (string, error) {
	resp, errMidtrans := s.client.CreateTransaction(s.buildRequest(order))
	if errMidtrans != nil {
		log.Error().Err(errMidtrans).Str("order", order.OrderCode).Msg("Midtrans CreateTransaction failed")
		return "", fmt.Errorf("%w: %s", ErrOrderRejected, errMidtrans.Message)
	}
	if resp == nil || resp.RedirectURL == "" {
		return "", nil
	}
	return resp.RedirectURL, nil
}

func (s *SnapRedirector) buildRequest(order models.OrderPayload) *snap.Request {
	items := make([]midtrans.ItemDetails, 0, len(order.Items)+3)
	for _, it := range order.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    it.ProductID,
			Name:  truncate(it.Title, 50),
			Price: it.Price,
			Qty:   int32(it.Quantity),
		})
	}
	if order.ShippingFee > 0 {
		items = append(items, midtrans.ItemDetails{ID: "SHIPPING_FEE", Name: "Phí vận chuyển", Price: order.ShippingFee, Qty: 1})
	}
	if order.Tax > 0 {
		items = append(items, midtrans.ItemDetails{ID: "TAX", Name: "Thuế VAT", Price: order.Tax, Qty: 1})
	}
	if order.Discount > 0 {
		items = append(items, midtrans.ItemDetails{ID: "DISCOUNT", Name: truncate("Khuyến mãi "+order.PromotionCode, 50), Price: -order.Discount, Qty: 1})
	}

	addr := &midtrans.CustomerAddress{
		FName:       order.ShippingAddress.FullName,
		Phone:       order.ShippingAddress.Phone,
		Address:     order.ShippingAddress.Address + ", " + order.ShippingAddress.Ward + ", " + order.ShippingAddress.District,
		City:        order.ShippingAddress.City,
		CountryCode: "VNM",
	}

	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderCode,
			GrossAmt: order.Total,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName:    order.ShippingAddress.FullName,
			Email:    order.ShippingAddress.Email,
			Phone:    order.ShippingAddress.Phone,
			BillAddr: addr,
			ShipAddr: addr,
		},
		EnabledPayments: snap.AllSnapPaymentType,
		Callbacks: &snap.Callbacks{
			Finish: s.finishURL + "?orderId=" + order.OrderCode,
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
