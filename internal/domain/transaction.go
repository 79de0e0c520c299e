package domain

const (
	StatusInitiated = "initiated"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Transaction struct {
	ID               int64   `db:"id"`
	OrderID          string  `db:"order_id"`
	Amount           float64 `db:"amount"`
	AmountPaid       float64 `db:"amount_paid"`
	Status           string  `db:"status"`
	GatewayPaymentID *string `db:"gateway_payment_id"`
	ItemName         string  `db:"item_name"`
	ItemDescription  string  `db:"item_description"`
	EmailAddress     string  `db:"email_address"`
	CreatedAt        int64   `db:"created_at"`
	UpdatedAt        int64   `db:"updated_at"`
}

// Terminal reports whether the transaction has reached a final lifecycle
// state. Notifications arriving for a terminal transaction are acknowledged
// without being re-applied.
func (t Transaction) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}
