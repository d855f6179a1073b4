package models

// ProductRef is the catalog snapshot a line item carries around. Price is in
// whole VND.
type ProductRef struct {
	ID         string `json:"id" validate:"required"`
	Title      string `json:"title"`
	Price      int64  `json:"price" validate:"gte=0"`
	CoverImage string `json:"coverImage"`
	Volume     string `json:"volume"`
}

type CartItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity" validate:"gt=0"`
}

func (ci CartItem) LineTotal() int64 {
	return ci.Product.Price * int64(ci.Quantity)
}
