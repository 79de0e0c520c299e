package paymentgateway

import (
	"fmt"

	"github.com/clickcart/storefront/payment-service/config"
)

type Algorithm string

const (
	AlgorithmMD5    Algorithm = "md5"
	AlgorithmSHA256 Algorithm = "sha256"
)

// Client holds the merchant credentials and endpoint configuration for a
// single PayFast integration. Credentials are injected here once; signing
// code never reads the environment.
type Client struct {
	merchantID  string
	merchantKey string
	passphrase  string
	algorithm   Algorithm
	processURL  string
	validateURL string
	returnURL   string
	cancelURL   string
	notifyURL   string
}

func CreatePayFastClient(config *config.Config) *Client {
	algorithm := AlgorithmMD5
	if config.PayFastConfig.SignatureAlgorithm == string(AlgorithmSHA256) {
		algorithm = AlgorithmSHA256
	}

	return &Client{
		merchantID:  config.PayFastConfig.MerchantID,
		merchantKey: config.PayFastConfig.MerchantKey,
		passphrase:  config.PayFastConfig.Passphrase,
		algorithm:   algorithm,
		processURL:  config.PayFastConfig.ProcessURL,
		validateURL: config.PayFastConfig.ValidateURL,
		returnURL:   config.PayFastConfig.ReturnURL,
		cancelURL:   config.PayFastConfig.CancelURL,
		notifyURL:   config.PayFastConfig.NotifyURL,
	}
}

func (c *Client) ProcessURL() string {
	return c.processURL
}

func (c *Client) ValidateURL() string {
	return c.validateURL
}

// PaymentFields builds the signed outbound field set for a payment
// initiation. The returned slice preserves the gateway's required field
// order and ends with the computed signature.
func (c *Client) PaymentFields(orderID string, amount float64, itemName, itemDescription, emailAddress string) []Field {
	fields := []Field{
		{Key: "merchant_id", Value: c.merchantID},
		{Key: "merchant_key", Value: c.merchantKey},
		{Key: "return_url", Value: c.returnURL},
		{Key: "cancel_url", Value: c.cancelURL},
		{Key: "notify_url", Value: c.notifyURL},
		{Key: "email_address", Value: emailAddress},
		{Key: "m_payment_id", Value: orderID},
		{Key: "amount", Value: fmt.Sprintf("%.2f", amount)},
		{Key: "item_name", Value: itemName},
		{Key: "item_description", Value: itemDescription},
	}

	signature := c.Sign(fields)

	return append(fields, Field{Key: "signature", Value: signature})
}
