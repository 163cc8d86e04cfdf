package order

// CheckoutItem is one cart line as submitted by the client.
// swagger:model CheckoutItem
type CheckoutItem struct {
	ISBN     string `json:"isbn"     example:"9780134190440"`
	Quantity int    `json:"quantity" example:"2"`
}

// CheckoutRequest payload of order placement. Prices are never accepted
// from the client; the server prices the cart from the inventory rows.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	CardNumber string         `json:"cardNumber" example:"4111111111111111"`
	CartItems  []CheckoutItem `json:"cartItems"`
}

// UpdateStatusRequest payload for the admin order workflow.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"Shipped"`
}
