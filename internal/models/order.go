package models

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

// Order statuses. Orders start pending and settle to completed or cancelled.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order records a checkout. Total is computed server-side from the item
// snapshots, never trusted from the client.
type Order struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Status OrderStatus `gorm:"not null;default:pending;index" json:"status"`
	Total  float64     `gorm:"not null" json:"total"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem snapshots one purchased line. Title and UnitPrice are copied from
// the product at checkout time so later catalog edits do not rewrite history.
type OrderItem struct {
	BaseModel

	OrderID   string   `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID string   `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Title     string  `gorm:"not null" json:"title"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}
