package transport

import (
	"encoding/json"
	"time"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Phone     string `json:"phone"      validate:"required,phone_ru"`
	Password1 string `json:"password1"  validate:"required,password"`
	Password2 string `json:"password2"  validate:"required,eqfield=Password1"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
}

type CreateProductRequest struct {
	Name     string `json:"name"      validate:"required,notblank"`
	Price    int64  `json:"price"     validate:"gt=0,lte=1000000000"`
	IsActive *bool  `json:"is_active"`
}

type PatchProductRequest struct {
	Name     *string `json:"name"      validate:"omitnil,notblank"`
	Price    *int64  `json:"price"     validate:"omitnil,gt=0,lte=1000000000"`
	IsActive *bool   `json:"is_active"`
}

type ProductResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SearchResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
	Products []ProductResponse `json:"products"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AddToCartRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  *int64 `json:"quantity"   validate:"omitnil,gt=0,lte=10000"`
}

// CartProduct is the product snapshot shown inside a cart line.
type CartProduct struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	IsActive bool   `json:"is_active"`
}

type CartLine struct {
	Quantity int64       `json:"quantity"`
	Product  CartProduct `json:"product"`
}

type CartView struct {
	TotalCost int64      `json:"total_cost"`
	Cart      []CartLine `json:"cart"`
}

type CartChange struct {
	Message   string     `json:"message"`
	TotalCost int64      `json:"total_cost"`
	Cart      []CartLine `json:"cart"`
}

type CartChangeQuantity struct {
	Message   string   `json:"message"`
	TotalCost int64    `json:"total_cost"`
	CartItem  CartLine `json:"cart_item"`
}

type DecrementKind string

const (
	DecrementLineUpdated DecrementKind = "line_updated"
	DecrementLineRemoved DecrementKind = "line_removed"
)

// DecrementResult is either an updated line or the cart left after the line
// was removed. Kind says which of CartItem and Cart is set.
type DecrementResult struct {
	Kind      DecrementKind `json:"kind"`
	Message   string        `json:"message"`
	TotalCost int64         `json:"total_cost"`
	CartItem  *CartLine     `json:"cart_item,omitempty"`
	Cart      []CartLine    `json:"cart,omitempty"`
}

// MarshalJSON writes the shape selected by Kind, keeping an empty cart as [].
func (r DecrementResult) MarshalJSON() ([]byte, error) {
	if r.Kind == DecrementLineRemoved {
		lines := r.Cart
		if lines == nil {
			lines = []CartLine{}
		}
		return json.Marshal(struct {
			Kind DecrementKind `json:"kind"`
			CartChange
		}{r.Kind, CartChange{Message: r.Message, TotalCost: r.TotalCost, Cart: lines}})
	}

	var item CartLine
	if r.CartItem != nil {
		item = *r.CartItem
	}
	return json.Marshal(struct {
		Kind DecrementKind `json:"kind"`
		CartChangeQuantity
	}{r.Kind, CartChangeQuantity{Message: r.Message, TotalCost: r.TotalCost, CartItem: item}})
}
