package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/models/other"
)

// RemoteCart is the server copy of an identity's cart. Exists is false when
// the server holds no cart for the identity yet.
type RemoteCart struct {
	Exists bool
	Items  []models.CartItem
}

type RemoteCartClient interface {
	GetCart(ctx context.Context, identity models.Identity) (RemoteCart, error)
	CreateCart(ctx context.Context, identity models.Identity, items []models.CartItem) error
	UpdateCart(ctx context.Context, identity models.Identity, items []models.CartItem) error
}

type HTTPCartClient struct {
	api *APIClient
}

func NewHTTPCartClient(api *APIClient) *HTTPCartClient {
	return &HTTPCartClient{api: api}
}

func (c *HTTPCartClient) GetCart(ctx context.Context, identity models.Identity) (RemoteCart, error) {
	params := url.Values{}
	if identity.ID != "" {
		params.Set("userId", identity.ID)
	}
	if identity.Email != "" {
		params.Set("email", identity.Email)
	}

	res, err := c.api.doRequest(ctx, http.MethodGet, "/users/cart?"+params.Encode(), nil)
	if err != nil {
		return RemoteCart{}, fmt.Errorf("%w: %w", ErrRemoteCart, err)
	}
	if res.status == http.StatusNotFound {
		return RemoteCart{}, nil
	}
	if !res.ok() {
		return RemoteCart{}, fmt.Errorf("%w: %w", ErrRemoteCart, res.err())
	}

	var body other.CartResponse
	if err := res.decode(&body); err != nil {
		return RemoteCart{}, fmt.Errorf("%w: %w", ErrRemoteCart, err)
	}
	if !body.Success || body.Data == nil {
		return RemoteCart{}, nil
	}
	return RemoteCart{Exists: true, Items: body.Data}, nil
}

func (c *HTTPCartClient) CreateCart(ctx context.Context, identity models.Identity, items []models.CartItem) error {
	return c.send(ctx, http.MethodPost, identity, items)
}

// UpdateCart replaces the whole server cart, an empty list clears it.
func (c *HTTPCartClient) UpdateCart(ctx context.Context, identity models.Identity, items []models.CartItem) error {
	return c.send(ctx, http.MethodPut, identity, items)
}

func (c *HTTPCartClient) send(ctx context.Context, method string, identity models.Identity, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	req := other.CartRequest{UserID: identity.ID, Email: identity.Email, ProductsCart: items}

	res, err := c.api.doRequest(ctx, method, "/users/cart", req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteCart, err)
	}
	if !res.ok() {
		return fmt.Errorf("%w: %w", ErrRemoteCart, res.err())
	}

	var body other.CartResponse
	if err := res.decode(&body); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteCart, err)
	}
	if !body.Success {
		return fmt.Errorf("%w: %s", ErrRemoteCart, body.Message)
	}
	return nil
}
