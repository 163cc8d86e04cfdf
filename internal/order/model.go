package order

import "time"

type Order struct {
	ID         int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	OrderDate  time.Time `json:"order_date"`
	Total      string    `json:"total_price"` // NUMERIC -> string
	Status     string    `json:"status"`
}

type Item struct {
	OrderID  int64  `json:"order_id"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Title    string `json:"title,omitempty"`
}

// HistoryRow is the denormalized customer order history projection.
type HistoryRow struct {
	OrderID   int64     `json:"order_id"`
	OrderDate time.Time `json:"order_date"`
	Status    string    `json:"status"`
	Total     string    `json:"total_price"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Authors   string    `json:"authors"`
	Publisher string    `json:"publisher"`
	Quantity  int       `json:"quantity"`
	Price     string    `json:"price"`
}

// AdminOrder is an order with the customer identity and its items attached.
type AdminOrder struct {
	Order
	CustomerName    string `json:"customer_name"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shipping_address"`
	Items           []Item `json:"items"`
}
