package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Rakhulsr/go-bookstore/app/models/other"
)

type CatalogClient interface {
	GetBook(ctx context.Context, id string) (*other.Book, error)
}

type HTTPCatalogClient struct {
	api *APIClient
}

func NewHTTPCatalogClient(api *APIClient) *HTTPCatalogClient {
	return &HTTPCatalogClient{api: api}
}

func (c *HTTPCatalogClient) GetBook(ctx context.Context, id string) (*other.Book, error) {
	res, err := c.api.doRequest(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("GetBook %s: %w", id, err)
	}
	if res.status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if !res.ok() {
		return nil, fmt.Errorf("GetBook %s: %w", id, res.err())
	}

	var body other.BookResponse
	if err := res.decode(&body); err != nil {
		return nil, fmt.Errorf("GetBook %s: %w", id, err)
	}
	if !body.Success || body.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return body.Data, nil
}
