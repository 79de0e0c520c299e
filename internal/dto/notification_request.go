package dto

// PaymentNotification is the ITN payload PayFast posts to the notify
// endpoint as application/x-www-form-urlencoded. Amount fields stay strings:
// the signature is computed over the values exactly as they came off the
// wire, so they must not be re-rendered through a float before verification.
type PaymentNotification struct {
	MPaymentID      string `form:"m_payment_id"`
	PfPaymentID     string `form:"pf_payment_id"`
	PaymentStatus   string `form:"payment_status"`
	ItemName        string `form:"item_name"`
	ItemDescription string `form:"item_description"`
	AmountGross     string `form:"amount_gross"`
	AmountFee       string `form:"amount_fee"`
	AmountNet       string `form:"amount_net"`
	CustomStr1      string `form:"custom_str1"`
	CustomStr2      string `form:"custom_str2"`
	CustomStr3      string `form:"custom_str3"`
	CustomStr4      string `form:"custom_str4"`
	CustomStr5      string `form:"custom_str5"`
	EmailAddress    string `form:"email_address"`
	MerchantID      string `form:"merchant_id"`
	Signature       string `form:"signature"`
}
