package paymentgateway

import (
	"github.com/clickcart/storefront/payment-service/internal/dto"
)

// NotificationSignableFields lays out an ITN payload in the fixed order the
// gateway signs it in. The presented signature itself is not part of the
// result; Verify receives it separately.
func NotificationSignableFields(req dto.PaymentNotification) []Field {
	return []Field{
		{Key: "m_payment_id", Value: req.MPaymentID},
		{Key: "pf_payment_id", Value: req.PfPaymentID},
		{Key: "payment_status", Value: req.PaymentStatus},
		{Key: "item_name", Value: req.ItemName},
		{Key: "item_description", Value: req.ItemDescription},
		{Key: "amount_gross", Value: req.AmountGross},
		{Key: "amount_fee", Value: req.AmountFee},
		{Key: "amount_net", Value: req.AmountNet},
		{Key: "custom_str1", Value: req.CustomStr1},
		{Key: "custom_str2", Value: req.CustomStr2},
		{Key: "custom_str3", Value: req.CustomStr3},
		{Key: "custom_str4", Value: req.CustomStr4},
		{Key: "custom_str5", Value: req.CustomStr5},
		{Key: "email_address", Value: req.EmailAddress},
		{Key: "merchant_id", Value: req.MerchantID},
	}
}

// ValidationBody renders the payload the way the gateway's validate endpoint
// expects it posted back: the signable fields, same encoding, no passphrase.
func ValidationBody(fields []Field) string {
	return Canonicalize(fields, "")
}

// VerifyNotification checks an inbound ITN payload against its presented
// signature.
func (c *Client) VerifyNotification(req dto.PaymentNotification) bool {
	return c.Verify(NotificationSignableFields(req), req.Signature)
}
