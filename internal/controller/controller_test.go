package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/clickcart/storefront/payment-service/internal/dto"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
	"github.com/clickcart/storefront/payment-service/pkg/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPaymentService struct {
	notificationErr error
	received        *dto.PaymentNotification
}

func (s *stubPaymentService) InitiatePayment(ctx context.Context, req dto.PaymentRequest) (dto.PaymentResponse, error) {
	return dto.PaymentResponse{}, nil
}

func (s *stubPaymentService) HandlePaymentNotification(ctx context.Context, req dto.PaymentNotification) error {
	s.received = &req
	return s.notificationErr
}

func (s *stubPaymentService) GetTransactions(ctx context.Context, filter pkgdto.Filter) (pkgdto.Pagination, error) {
	return pkgdto.Pagination{}, nil
}

func (s *stubPaymentService) CancelAbandonedPayments() {}

func TestPayFastNotificationWebhookAcknowledgment(t *testing.T) {
	type TestCase struct {
		Name           string
		ServiceErr     error
		ExpectedStatus int
	}

	testCases := []TestCase{
		{
			Name:           "Successful reconciliation acks 200",
			ServiceErr:     nil,
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:           "Unknown transaction acks 200 to stop redelivery",
			ServiceErr:     errs.ErrTransactionNotFound,
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:           "Signature mismatch is final, 400",
			ServiceErr:     errs.ErrSignatureMismatch,
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Name:           "Malformed payload is final, 400",
			ServiceErr:     errs.ErrMalformedPayload,
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Name:           "Persistence failure is retryable, 500",
			ServiceErr:     errs.ErrInternalServer,
			ExpectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			stub := &stubPaymentService{notificationErr: tc.ServiceErr}
			c := Controller{service: stub}

			form := url.Values{}
			form.Set("m_payment_id", "ORDER-42")
			form.Set("pf_payment_id", "1089250")
			form.Set("payment_status", "COMPLETE")
			form.Set("amount_gross", "50.00")
			form.Set("signature", "deadbeef")

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notifications", strings.NewReader(form.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			rec := httptest.NewRecorder()

			err := c.PayFastNotificationWebhook(e.NewContext(req, rec))
			require.NoError(t, err)

			assert.Equal(t, tc.ExpectedStatus, rec.Code)

			require.NotNil(t, stub.received)
			assert.Equal(t, "ORDER-42", stub.received.MPaymentID)
			assert.Equal(t, "COMPLETE", stub.received.PaymentStatus)
			assert.Equal(t, "50.00", stub.received.AmountGross)
		})
	}
}
