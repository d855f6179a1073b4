package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/models/other"
)

// OrderClient places cash-on-delivery orders.
type OrderClient interface {
	CreateOrder(ctx context.Context, order models.OrderPayload) error
}

// PaymentRedirector registers a bank transfer order and returns the URL the
// customer is sent to for payment.
type PaymentRedirector interface {
	Redirect(ctx context.Context, order models.OrderPayload) (string, error)
}

// HTTPOrderClient covers both order endpoints of the storefront API. Bank
// transfers go through the backend's VNPay integration.
type HTTPOrderClient struct {
	api *APIClient
}

func NewHTTPOrderClient(api *APIClient) *HTTPOrderClient {
	return &HTTPOrderClient{api: api}
}

func (c *HTTPOrderClient) CreateOrder(ctx context.Context, order models.OrderPayload) error {
	_, err := c.post(ctx, "/orders", order)
	return err
}

func (c *HTTPOrderClient) Redirect(ctx context.Context, order models.OrderPayload) (string, error) {
	body, err := c.post(ctx, "/orders/vnpay", order)
	if err != nil {
		return "", err
	}
	return body.PaymentURL, nil
}

func (c *HTTPOrderClient) post(ctx context.Context, path string, order models.OrderPayload) (other.OrderResponse, error) {
	var body other.OrderResponse

	res, err := c.api.doRequest(ctx, http.MethodPost, path, order)
	if err != nil {
		return body, fmt.Errorf("create order %s: %w", order.OrderCode, err)
	}
	if decodeErr := res.decode(&body); decodeErr != nil && res.ok() {
		return body, fmt.Errorf("create order %s: %w", order.OrderCode, decodeErr)
	}
	if !res.ok() || !body.Success {
		msg := body.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", res.status)
		}
		return body, fmt.Errorf("%w: %s", ErrOrderRejected, msg)
	}
	return body, nil
}
