package model

// OrderResult is what the exchange reports back for a submitted order. A
// missing OrderID or a nonzero Code means the order was not accepted.
type OrderResult struct {
	OrderID       string
	ClientOrderID string
	Code          int
	Msg           string
}

// Accepted reports whether the exchange acknowledged the order.
func (r *OrderResult) Accepted() bool {
	return r != nil && r.Code == 0 && r.OrderID != ""
}
