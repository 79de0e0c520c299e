package dto

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type PaymentEvent struct {
	OrderID          string  `json:"order_id"`
	GatewayPaymentID string  `json:"gateway_payment_id"`
	Status           string  `json:"status"`
	AmountPaid       float64 `json:"amount_paid"`
}
