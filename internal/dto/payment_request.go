package dto

type PaymentRequest struct {
	Amount          float64 `json:"amount"`
	ItemName        string  `json:"item_name"`
	ItemDescription string  `json:"item_description"`
	EmailAddress    string  `json:"email_address"`
}
