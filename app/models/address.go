package models

// DeliveryAddress is an entry of the address book.
type DeliveryAddress struct {
	ID       string `json:"id"`
	Street   string `json:"street" validate:"required"`
	Ward     string `json:"ward" validate:"required"`
	District string `json:"district" validate:"required"`
	City     string `json:"city" validate:"required"`
}

// ShippingAddress is the form filled in at checkout.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required,numeric,min=10,max=11"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required"`
	Ward     string `json:"ward" validate:"required"`
	District string `json:"district" validate:"required"`
	City     string `json:"city" validate:"required"`
	Notes    string `json:"notes,omitempty"`
}
