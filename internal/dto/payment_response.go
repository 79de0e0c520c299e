package dto

// PaymentField mirrors a single hidden form input the boundary renders into
// the gateway redirect form. Order matters to the gateway, hence a slice
// rather than a map.
type PaymentField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PaymentResponse struct {
	OrderID    string         `json:"order_id"`
	ProcessURL string         `json:"process_url"`
	Fields     []PaymentField `json:"fields"`
}

type TransactionResponse struct {
	ID               int64   `json:"id"`
	OrderID          string  `json:"order_id"`
	Amount           float64 `json:"amount"`
	AmountPaid       float64 `json:"amount_paid"`
	Status           string  `json:"status"`
	GatewayPaymentID *string `json:"gateway_payment_id"`
	ItemName         string  `json:"item_name"`
	EmailAddress     string  `json:"email_address"`
	CreatedAt        int64   `json:"created_at"`
}
