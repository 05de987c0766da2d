package domain

import "time"

const (
	RoleCustomer string = "customer"
	RoleAdmin    string = "admin"
)

const (
	// NewOrderStatus заказ создан, ещё не передан в доставку;
	NewOrderStatus string = "new"
	// DeliveringOrderStatus заказ передан в доставку;
	DeliveringOrderStatus string = "delivering"
	// CompletedOrderStatus заказ доставлен покупателю;
	CompletedOrderStatus string = "completed"
	// CancelledOrderStatus заказ отменён;
	CancelledOrderStatus string = "cancelled"
)

const (
	PaymentCard   string = "card"
	PaymentOnline string = "online"
)

func ValidOrderStatus(status string) bool {
	switch status {
	case NewOrderStatus, DeliveringOrderStatus, CompletedOrderStatus, CancelledOrderStatus:
		return true
	}
	return false
}

func ValidPayment(payment string) bool {
	return payment == PaymentCard || payment == PaymentOnline
}

type User struct {
	ID            int        `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Name          string     `db:"name" json:"name"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Roles         []string   `db:"roles" json:"roles"`
	RefreshTokens []string   `db:"refresh_tokens" json:"-"`
	TotalSpent    float64    `db:"total_spent" json:"totalSpent"`
	OrdersCount   int        `db:"orders_count" json:"ordersCount"`
	LastOrderID   *int       `db:"last_order_id" json:"lastOrderId,omitempty"`
	LastOrderAt   *time.Time `db:"last_order_at" json:"lastOrderAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

type Order struct {
	ID          int       `db:"id" json:"id"`
	Number      int       `db:"number" json:"number"`
	CustomerID  int       `db:"customer_id" json:"customerId"`
	Status      string    `db:"status" json:"status"`
	TotalAmount float64   `db:"total_amount" json:"totalAmount"`
	Payment     string    `db:"payment" json:"payment"`
	Address     string    `db:"address" json:"address"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email"`
	Comment     string    `db:"comment" json:"comment,omitempty"`
	ProductIDs  []int     `db:"product_ids" json:"productIds"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID            int       `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Category      string    `db:"category" json:"category"`
	Description   string    `db:"description" json:"description"`
	Price         *float64  `db:"price" json:"price"` // nil means not currently for sale
	ImageName     string    `db:"image_name" json:"imageName"`
	ImageOriginal string    `db:"image_original" json:"imageOriginal"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// UserStats is the denormalized aggregate of a user's orders. It is a cache:
// every field must stay derivable from the orders table.
type UserStats struct {
	TotalSpent  float64
	OrdersCount int
	LastOrderID *int
	LastOrderAt *time.Time
}
