package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkoutForm = models.ShippingAddress{
	FullName: "Trần Thị B",
	Phone:    "0912345678",
	Email:    "b@example.com",
	Address:  "45 Nguyễn Huệ",
	Ward:     "Bến Nghé",
	District: "Quận 1",
	City:     "TP.HCM",
}

func newCheckout(orders *fakeOrders) *CheckoutService {
	svc := NewCheckoutService(orders, orders, validator.New())
	svc.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return svc
}

func TestPrepare_SavesDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	store := h.store(t, userX)
	require.NoError(t, store.AddItem(ctx, product("a", 60_000), 2))
	ok, _ := store.ApplyPromotion(ctx, models.Promotion{ID: "p", Code: "GIAM10", DiscountType: models.DiscountPercentage, DiscountValue: 10})
	require.True(t, ok)

	draft, err := newCheckout(&fakeOrders{}).Prepare(ctx, store, checkoutForm, models.PaymentCOD)
	require.NoError(t, err)
	assert.Equal(t, "GIAM10", draft.PromotionCode)
	assert.Equal(t, int64(120_000), draft.Summary.Subtotal)
	assert.Equal(t, int64(12_000), draft.Summary.Discount)

	saved, err := store.CheckoutDraft(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, draft.Items, saved.Items)
	assert.Equal(t, models.PaymentCOD, saved.PaymentMethod)
	assert.Equal(t, "x", saved.Owner)
}

func TestPrepare_FillsLocationFromSelectedAddress(t *testing.T) {
	ctx := context.Background()
	store := newHarness().store(t, userX)
	require.NoError(t, store.AddItem(ctx, product("a", 1), 1))
	addr, err := store.AddAddress(ctx, models.DeliveryAddress{Street: "9 Trần Phú", Ward: "Phường 4", District: "Quận 5", City: "TP.HCM"})
	require.NoError(t, err)
	store.SelectAddress(ctx, addr.ID)

	form := models.ShippingAddress{FullName: "C", Phone: "0987654321", Email: "c@example.com"}
	draft, err := newCheckout(&fakeOrders{}).Prepare(ctx, store, form, models.PaymentBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, "9 Trần Phú", draft.ShippingAddress.Address)
	assert.Equal(t, "Quận 5", draft.ShippingAddress.District)
}

func TestPrepare_Validation(t *testing.T) {
	ctx := context.Background()
	store := newHarness().store(t, userX)
	svc := newCheckout(&fakeOrders{})

	_, err := svc.Prepare(ctx, store, checkoutForm, models.PaymentCOD)
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, store.AddItem(ctx, product("a", 1), 1))

	_, err = svc.Prepare(ctx, store, checkoutForm, "paypal")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	bad := checkoutForm
	bad.Phone = "12345"
	bad.Email = "not-an-email"
	_, err = svc.Prepare(ctx, store, bad, models.PaymentCOD)
	require.ErrorIs(t, err, ErrInvalidShippingAddress)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestConfirm_COD(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.remote.seed("x")
	store := h.store(t, userX)
	require.NoError(t, store.AddItem(ctx, product("a", 250_000), 1))
	orders := &fakeOrders{}
	svc := newCheckout(orders)

	_, err := svc.Prepare(ctx, store, checkoutForm, models.PaymentCOD)
	require.NoError(t, err)

	result, err := svc.Confirm(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1700000000000", result.OrderCode)
	assert.Empty(t, result.PaymentURL)

	require.Len(t, orders.orders, 1)
	order := orders.orders[0]
	assert.Equal(t, "x", order.User)
	assert.Equal(t, "x@example.com", order.Email)
	assert.Equal(t, []models.OrderItem{{ProductID: "a", Title: "Book a", Price: 250_000, Quantity: 1, Image: "/covers/a.jpg"}}, order.Items)
	assert.Equal(t, int64(250_000+0+25_000), order.Total)

	assert.Empty(t, store.Items())
	draft, err := store.CheckoutDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, draft)

	updates := h.remote.ops("update")
	require.NotEmpty(t, updates)
	assert.Empty(t, updates[len(updates)-1].items)
}

func TestConfirm_BankTransfer(t *testing.T) {
	ctx := context.Background()
	store := newHarness().store(t, guest)
	require.NoError(t, store.AddItem(ctx, product("a", 10_000), 1))
	orders := &fakeOrders{url: "https://sandbox.vnpayment.vn/pay?x=1"}
	svc := newCheckout(orders)

	_, err := svc.Prepare(ctx, store, checkoutForm, models.PaymentBankTransfer)
	require.NoError(t, err)

	result, err := svc.Confirm(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.vnpayment.vn/pay?x=1", result.PaymentURL)
	assert.Len(t, orders.redirs, 1)
	assert.Empty(t, orders.orders)
	assert.Empty(t, store.Items())
}

func TestConfirm_FailuresKeepCart(t *testing.T) {
	ctx := context.Background()

	cases := map[string]struct {
		orders  *fakeOrders
		method  models.PaymentMethod
		wantErr error
	}{
		"order rejected":   {&fakeOrders{err: ErrOrderRejected}, models.PaymentCOD, ErrOrderRejected},
		"redirect failed":  {&fakeOrders{redirErr: errBoom}, models.PaymentBankTransfer, errBoom},
		"redirect missing": {&fakeOrders{}, models.PaymentBankTransfer, ErrPaymentRedirectMissing},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := newHarness().store(t, guest)
			require.NoError(t, store.AddItem(ctx, product("a", 10_000), 1))
			svc := newCheckout(tc.orders)

			_, err := svc.Prepare(ctx, store, checkoutForm, tc.method)
			require.NoError(t, err)

			_, err = svc.Confirm(ctx, store)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Len(t, store.Items(), 1)

			draft, err := store.CheckoutDraft(ctx)
			require.NoError(t, err)
			assert.NotNil(t, draft)
		})
	}
}

func TestConfirm_WithoutDraft(t *testing.T) {
	store := newHarness().store(t, guest)
	_, err := newCheckout(&fakeOrders{}).Confirm(context.Background(), store)
	assert.ErrorIs(t, err, ErrNoCheckoutDraft)
}

func TestConfirm_DraftDoesNotFollowIdentitySwitch(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	require.NoError(t, h.slots.SaveCart(ctx, "y", []models.CartItem{line("y1", 15_000, 1)}))
	store := h.store(t, userX)
	require.NoError(t, store.AddItem(ctx, product("a", 60_000), 1))
	orders := &fakeOrders{}
	svc := newCheckout(orders)

	_, err := svc.Prepare(ctx, store, checkoutForm, models.PaymentCOD)
	require.NoError(t, err)

	store.SetIdentity(ctx, userY)

	_, err = svc.Confirm(ctx, store)
	assert.ErrorIs(t, err, ErrNoCheckoutDraft)
	assert.Empty(t, orders.orders)
	assert.Equal(t, []models.CartItem{line("y1", 15_000, 1)}, store.Items())
}
