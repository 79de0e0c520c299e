package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/clickcart/storefront/payment-service/config"
	"github.com/clickcart/storefront/payment-service/internal/domain"
	"github.com/clickcart/storefront/payment-service/internal/dto"
	paymentgateway "github.com/clickcart/storefront/payment-service/internal/infrastructure/payment-gateway"
	"github.com/clickcart/storefront/payment-service/internal/repository"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
	"github.com/clickcart/storefront/payment-service/pkg/errs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTransactionRepository struct {
	mu          sync.Mutex
	trxMu       sync.Mutex
	byOrderID   map[string]domain.Transaction
	nextID      int64
	failUpdates bool
	updateCalls int
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{
		byOrderID: make(map[string]domain.Transaction),
	}
}

func (m *mockTransactionRepository) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo repository.TransactionRepository) error) error {
	// Serializes callers the way the row lock does in Postgres.
	m.trxMu.Lock()
	defer m.trxMu.Unlock()

	return fn(ctx, m)
}

func (m *mockTransactionRepository) CreateTransaction(ctx context.Context, data domain.Transaction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	data.ID = m.nextID
	m.byOrderID[data.OrderID] = data

	return data.ID, nil
}

func (m *mockTransactionRepository) GetTransactionByOrderID(ctx context.Context, orderID string) (domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.byOrderID[orderID]
	if !ok {
		return domain.Transaction{}, errs.ErrTransactionNotFound
	}

	return data, nil
}

func (m *mockTransactionRepository) GetTransactionByOrderIDForUpdate(ctx context.Context, orderID string) (domain.Transaction, error) {
	return m.GetTransactionByOrderID(ctx, orderID)
}

func (m *mockTransactionRepository) UpdateTransactionStatus(ctx context.Context, data domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++

	if m.failUpdates {
		return errs.ErrInternalServer
	}

	m.byOrderID[data.OrderID] = data

	return nil
}

func (m *mockTransactionRepository) GetTransactions(ctx context.Context, filter pkgdto.Filter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data []domain.Transaction
	for _, trx := range m.byOrderID {
		if filter.Status != "" && trx.Status != filter.Status {
			continue
		}
		if filter.StaleBefore != 0 && trx.CreatedAt >= filter.StaleBefore {
			continue
		}
		data = append(data, trx)
	}

	return data, nil
}

type mockKafkaWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (m *mockKafkaWriter) WriteMessages(msgs ...kafka.Message) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msgs...)

	return len(msgs), nil
}

func (m *mockKafkaWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.messages)
}

func testConfig() *config.Config {
	return &config.Config{
		PayFastConfig: config.PayFastConfig{
			MerchantID:  "10000100",
			MerchantKey: "46f0cd694581a",
			Passphrase:  "jt7NOE43FZPn",
			ProcessURL:  "https://sandbox.payfast.co.za/eng/process",
			ReturnURL:   "https://store.example.com/payments/return",
			CancelURL:   "https://store.example.com/payments/cancel",
			NotifyURL:   "https://store.example.com/payments/notify",
		},
		AbandonedPeriod: 24 * time.Hour,
	}
}

type testHarness struct {
	svc    PaymentService
	repo   *mockTransactionRepository
	writer *mockKafkaWriter
	client *paymentgateway.Client
}

func newTestHarness() *testHarness {
	conf := testConfig()
	repo := newMockTransactionRepository()
	writer := &mockKafkaWriter{}
	client := paymentgateway.CreatePayFastClient(conf)

	return &testHarness{
		svc:    CreatePaymentService(repo, client, writer, conf, nil),
		repo:   repo,
		writer: writer,
		client: client,
	}
}

func (h *testHarness) seedInitiated(orderID string, amount float64) {
	h.repo.byOrderID[orderID] = domain.Transaction{
		ID:           1,
		OrderID:      orderID,
		Amount:       amount,
		Status:       domain.StatusInitiated,
		ItemName:     "Order1",
		EmailAddress: "a@b.com",
		CreatedAt:    time.Now().Unix(),
		UpdatedAt:    time.Now().Unix(),
	}
}

func (h *testHarness) signedNotification(orderID, status, gross string) dto.PaymentNotification {
	notification := dto.PaymentNotification{
		MPaymentID:    orderID,
		PfPaymentID:   "1089250",
		PaymentStatus: status,
		ItemName:      "Order1",
		AmountGross:   gross,
		EmailAddress:  "a@b.com",
		MerchantID:    "10000100",
	}
	notification.Signature = h.client.Sign(paymentgateway.NotificationSignableFields(notification))

	return notification
}

func TestHandlePaymentNotification_Complete(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	err := h.svc.HandlePaymentNotification(context.Background(), h.signedNotification("ORDER-42", PaymentStatusComplete, "50.00"))
	require.NoError(t, err)

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusCompleted, trx.Status)
	assert.Equal(t, 50.00, trx.AmountPaid)
	require.NotNil(t, trx.GatewayPaymentID)
	assert.Equal(t, "1089250", *trx.GatewayPaymentID)
	assert.Equal(t, 1, h.writer.count())
}

func TestHandlePaymentNotification_DuplicateDeliveryIsIdempotent(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	notification := h.signedNotification("ORDER-42", PaymentStatusComplete, "50.00")

	require.NoError(t, h.svc.HandlePaymentNotification(context.Background(), notification))
	require.NoError(t, h.svc.HandlePaymentNotification(context.Background(), notification))

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusCompleted, trx.Status)
	assert.Equal(t, 50.00, trx.AmountPaid)
	assert.Equal(t, 1, h.repo.updateCalls, "terminal transaction must not be written again")
	assert.Equal(t, 1, h.writer.count(), "duplicate delivery must not re-emit the event")
}

func TestHandlePaymentNotification_ConcurrentDuplicateDelivery(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	notification := h.signedNotification("ORDER-42", PaymentStatusComplete, "50.00")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := h.svc.HandlePaymentNotification(context.Background(), notification)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusCompleted, trx.Status)
	assert.Equal(t, 50.00, trx.AmountPaid)
	assert.Equal(t, 1, h.repo.updateCalls)
	assert.Equal(t, 1, h.writer.count())
}

func TestHandlePaymentNotification_Cancelled(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	err := h.svc.HandlePaymentNotification(context.Background(), h.signedNotification("ORDER-42", PaymentStatusCancelled, ""))
	require.NoError(t, err)

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusCancelled, trx.Status)
	assert.Equal(t, 0.00, trx.AmountPaid)
	require.NotNil(t, trx.GatewayPaymentID)
}

func TestHandlePaymentNotification_SignatureMismatch(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	notification := h.signedNotification("ORDER-42", PaymentStatusComplete, "50.00")
	notification.AmountGross = "5000.00"

	err := h.svc.HandlePaymentNotification(context.Background(), notification)
	assert.ErrorIs(t, err, errs.ErrSignatureMismatch)

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusInitiated, trx.Status, "rejected notification must not change state")
	assert.Equal(t, 0, h.repo.updateCalls)
	assert.Equal(t, 0, h.writer.count())
}

func TestHandlePaymentNotification_UnknownOrder(t *testing.T) {
	h := newTestHarness()

	err := h.svc.HandlePaymentNotification(context.Background(), h.signedNotification("ORDER-404", PaymentStatusComplete, "50.00"))
	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)

	assert.Empty(t, h.repo.byOrderID, "unknown order must not create a record")
}

func TestHandlePaymentNotification_MalformedGrossAmount(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	err := h.svc.HandlePaymentNotification(context.Background(), h.signedNotification("ORDER-42", PaymentStatusComplete, "fifty"))
	assert.ErrorIs(t, err, errs.ErrMalformedPayload)

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusInitiated, trx.Status)
}

func TestHandlePaymentNotification_MissingRequiredField(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	notification := dto.PaymentNotification{
		MPaymentID:    "ORDER-42",
		PaymentStatus: PaymentStatusComplete,
		AmountGross:   "50.00",
		MerchantID:    "10000100",
	}
	notification.Signature = h.client.Sign(paymentgateway.NotificationSignableFields(notification))

	err := h.svc.HandlePaymentNotification(context.Background(), notification)
	assert.ErrorIs(t, err, errs.ErrMalformedPayload)
}

func TestHandlePaymentNotification_InterimStatusIsNoOp(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)

	err := h.svc.HandlePaymentNotification(context.Background(), h.signedNotification("ORDER-42", "PENDING", "50.00"))
	require.NoError(t, err)

	trx := h.repo.byOrderID["ORDER-42"]
	assert.Equal(t, domain.StatusInitiated, trx.Status)
	assert.Equal(t, 0, h.writer.count())
}

func TestHandlePaymentNotification_PersistenceFailureIsRetryable(t *testing.T) {
	h := newTestHarness()
	h.seedInitiated("ORDER-42", 50.00)
	h.repo.failUpdates = true

	err := h.svc.HandlePaymentNotification(context.Background(), h.signedNotification("ORDER-42", PaymentStatusComplete, "50.00"))
	assert.ErrorIs(t, err, errs.ErrInternalServer)
	assert.Equal(t, 0, h.writer.count(), "no event until the transition is persisted")
}

func TestInitiatePayment(t *testing.T) {
	h := newTestHarness()

	resp, err := h.svc.InitiatePayment(context.Background(), dto.PaymentRequest{
		Amount:          100.00,
		ItemName:        "Order1",
		ItemDescription: "Test",
		EmailAddress:    "a@b.com",
	})
	require.NoError(t, err)

	require.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", resp.ProcessURL)

	trx, ok := h.repo.byOrderID[resp.OrderID]
	require.True(t, ok)
	assert.Equal(t, domain.StatusInitiated, trx.Status)
	assert.Equal(t, 100.00, trx.Amount)

	byKey := map[string]string{}
	for _, field := range resp.Fields {
		byKey[field.Key] = field.Value
	}
	assert.Equal(t, resp.OrderID, byKey["m_payment_id"])
	assert.Equal(t, "100.00", byKey["amount"])
	assert.NotEmpty(t, byKey["signature"])
}

func TestInitiatePayment_InvalidRequest(t *testing.T) {
	h := newTestHarness()

	_, err := h.svc.InitiatePayment(context.Background(), dto.PaymentRequest{Amount: -1})
	assert.ErrorIs(t, err, errs.ErrClient)

	_, err = h.svc.InitiatePayment(context.Background(), dto.PaymentRequest{Amount: 10, ItemName: ""})
	assert.ErrorIs(t, err, errs.ErrClient)

	assert.Empty(t, h.repo.byOrderID)
}

func TestCancelAbandonedPayments(t *testing.T) {
	h := newTestHarness()

	stale := domain.Transaction{
		ID:        1,
		OrderID:   "ORDER-STALE",
		Amount:    10,
		Status:    domain.StatusInitiated,
		CreatedAt: time.Now().Add(-48 * time.Hour).Unix(),
	}
	fresh := domain.Transaction{
		ID:        2,
		OrderID:   "ORDER-FRESH",
		Amount:    10,
		Status:    domain.StatusInitiated,
		CreatedAt: time.Now().Unix(),
	}
	h.repo.byOrderID[stale.OrderID] = stale
	h.repo.byOrderID[fresh.OrderID] = fresh

	h.svc.CancelAbandonedPayments()

	assert.Equal(t, domain.StatusCancelled, h.repo.byOrderID["ORDER-STALE"].Status)
	assert.Equal(t, domain.StatusInitiated, h.repo.byOrderID["ORDER-FRESH"].Status)
	assert.Equal(t, 1, h.writer.count())
}
