package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string `gorm:"not null"                 json:"first_name"`
	LastName     string `gorm:"not null"                 json:"last_name"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	Phone        string `gorm:"uniqueIndex;not null"     json:"phone"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`
	IsActive     bool   `gorm:"not null"                 json:"is_active"`
	IsAdmin      bool   `gorm:"not null"                 json:"is_admin"`
}

type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name      string    `gorm:"not null"                    json:"name"`
	Price     int64     `gorm:"not null;check:price>0"      json:"price"`
	IsActive  bool      `gorm:"not null;index"              json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime"              json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"              json:"updated_at"`
}

type Cart struct {
	ID     uint  `gorm:"primaryKey;autoIncrement"                json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null"                    json:"user_id"`
	User   *User `gorm:"constraint:OnDelete:CASCADE"             json:"-"`
}

// MaxLineQuantity caps the units of one product in a cart. The CHECK below
// repeats the literal.
const MaxLineQuantity = 10000

// CartProduct is one line of a cart. A line never holds a zero quantity.
type CartProduct struct {
	CartID    uint      `gorm:"primaryKey;autoIncrement:false"      json:"cart_id"`
	ProductID uint      `gorm:"primaryKey;autoIncrement:false"      json:"product_id"`
	Quantity  int64     `gorm:"not null;default:1;check:chk_cart_products_quantity_range,quantity > 0 AND quantity <= 10000" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime"                      json:"added_at"`
	Cart      *Cart     `gorm:"constraint:OnDelete:CASCADE"         json:"-"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"         json:"product,omitempty"`
}

func All() []any {
	return []any{&User{}, &Product{}, &Cart{}, &CartProduct{}}
}
