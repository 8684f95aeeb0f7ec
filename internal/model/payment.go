package model

// PaymentInfo is everything the checkout SDK needs to run a payment for a
// freshly created booking.
type PaymentInfo struct {
	ClientKey     string  `json:"clientKey"`
	OrderID       string  `json:"orderId"`
	OrderName     string  `json:"orderName"`
	Amount        float64 `json:"amount"`
	CustomerName  string  `json:"customerName"`
	SuccessURL    string  `json:"successUrl"`
	FailURL       string  `json:"failUrl"`
	BookingNumber string  `json:"bookingNumber"`
}
