package other

import "github.com/Rakhulsr/go-bookstore/app/models"

// CartRequest is the body of POST/PUT /users/cart.
type CartRequest struct {
	UserID       string            `json:"userId,omitempty"`
	Email        string            `json:"email,omitempty"`
	ProductsCart []models.CartItem `json:"productsCart"`
}

// CartResponse is returned by every /users/cart call. Data stays nil when the
// server omits it or sends null, which is how a missing cart is reported.
type CartResponse struct {
	Success bool              `json:"success"`
	Data    []models.CartItem `json:"data"`
	Message string            `json:"message,omitempty"`
}

type Book struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Price      int64  `json:"price"`
	Stock      int    `json:"stock"`
	CoverImage string `json:"coverImage"`
	Volume     string `json:"volume,omitempty"`
}

func (b Book) ToProductRef() models.ProductRef {
	return models.ProductRef{
		ID:         b.ID,
		Title:      b.Title,
		Price:      b.Price,
		CoverImage: b.CoverImage,
		Volume:     b.Volume,
	}
}

type BookResponse struct {
	Success bool   `json:"success"`
	Data    *Book  `json:"data"`
	Message string `json:"message,omitempty"`
}

type OrderData struct {
	OrderCode string `json:"orderCode"`
	Status    string `json:"status,omitempty"`
}

// OrderResponse covers both the COD order endpoint and the bank transfer
// endpoint, which additionally returns a payment URL.
type OrderResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	PaymentURL string     `json:"paymentUrl,omitempty"`
	Data       *OrderData `json:"data,omitempty"`
}
