package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clickcart/storefront/payment-service/config"
	"github.com/clickcart/storefront/payment-service/internal/domain"
	"github.com/clickcart/storefront/payment-service/internal/dto"
	paymentgateway "github.com/clickcart/storefront/payment-service/internal/infrastructure/payment-gateway"
	"github.com/clickcart/storefront/payment-service/internal/repository"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
	"github.com/clickcart/storefront/payment-service/pkg/errs"
	"github.com/clickcart/storefront/payment-service/pkg/httpclient"
	"github.com/clickcart/storefront/payment-service/pkg/utils"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

// Gateway payment_status values carried in ITN payloads.
const (
	PaymentStatusComplete  = "COMPLETE"
	PaymentStatusCancelled = "CANCELLED"
)

// KafkaWriter is the producer surface the service needs; *kafka.Conn
// satisfies it.
type KafkaWriter interface {
	WriteMessages(msgs ...kafka.Message) (int, error)
}

type PaymentServiceImpl struct {
	repository     repository.TransactionRepository
	payfastClient  *paymentgateway.Client
	kafkaProducer  KafkaWriter
	config         *config.Config
	circuitBreaker *gobreaker.CircuitBreaker[[]byte]
}

func CreatePaymentService(repository repository.TransactionRepository, payfastClient *paymentgateway.Client, kafkaProducer KafkaWriter, config *config.Config, circuitBreaker *gobreaker.CircuitBreaker[[]byte]) PaymentService {
	return &PaymentServiceImpl{
		repository:     repository,
		payfastClient:  payfastClient,
		kafkaProducer:  kafkaProducer,
		config:         config,
		circuitBreaker: circuitBreaker,
	}
}

func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, req dto.PaymentRequest) (resp dto.PaymentResponse, err error) {
	if req.Amount <= 0 || req.ItemName == "" || req.EmailAddress == "" {
		return resp, errs.ErrClient
	}

	orderID, err := uuid.NewV7()
	if err != nil {
		return resp, fmt.Errorf("error generating order id: %v", err)
	}

	fields := s.payfastClient.PaymentFields(orderID.String(), req.Amount, req.ItemName, req.ItemDescription, req.EmailAddress)

	_, err = s.repository.CreateTransaction(ctx, domain.Transaction{
		OrderID:         orderID.String(),
		Amount:          req.Amount,
		Status:          domain.StatusInitiated,
		ItemName:        req.ItemName,
		ItemDescription: req.ItemDescription,
		EmailAddress:    req.EmailAddress,
		CreatedAt:       time.Now().Unix(),
		UpdatedAt:       time.Now().Unix(),
	})
	if err != nil {
		return resp, err
	}

	resp.OrderID = orderID.String()
	resp.ProcessURL = s.payfastClient.ProcessURL()
	for _, field := range fields {
		resp.Fields = append(resp.Fields, dto.PaymentField{Key: field.Key, Value: field.Value})
	}

	return resp, nil
}

func (s *PaymentServiceImpl) HandlePaymentNotification(ctx context.Context, req dto.PaymentNotification) (err error) {
	fields := paymentgateway.NotificationSignableFields(req)

	if !s.payfastClient.Verify(fields, req.Signature) {
		log.Warn().Str("component", "HandlePaymentNotification").Str("order_id", req.MPaymentID).Msg("notification signature mismatch")
		return errs.ErrSignatureMismatch
	}

	if req.MPaymentID == "" || req.PfPaymentID == "" || req.PaymentStatus == "" {
		return errs.ErrMalformedPayload
	}

	var grossAmount float64
	if req.PaymentStatus == PaymentStatusComplete {
		grossAmount, err = strconv.ParseFloat(req.AmountGross, 64)
		if err != nil {
			log.Warn().Str("component", "HandlePaymentNotification").Str("order_id", req.MPaymentID).Msg("unparsable gross amount on COMPLETE notification")
			return errs.ErrMalformedPayload
		}
	}

	if s.config.PayFastConfig.ValidateWithGateway {
		if err = s.confirmWithGateway(fields); err != nil {
			return err
		}
	}

	var applied *domain.Transaction

	err = s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.TransactionRepository) error {
		trx, err := repo.GetTransactionByOrderIDForUpdate(ctx, req.MPaymentID)
		if err != nil {
			return err
		}

		if trx.Terminal() {
			// Redelivered notification for a settled transaction: ack and
			// leave the record untouched.
			log.Info().Str("component", "HandlePaymentNotification").Str("order_id", trx.OrderID).Str("status", trx.Status).Msg("duplicate notification for terminal transaction")
			return nil
		}

		switch req.PaymentStatus {
		case PaymentStatusComplete:
			trx.Status = domain.StatusCompleted
			trx.AmountPaid = grossAmount
		case PaymentStatusCancelled:
			trx.Status = domain.StatusCancelled
		default:
			// Interim gateway statuses (e.g. PENDING) carry no transition.
			log.Info().Str("component", "HandlePaymentNotification").Str("order_id", trx.OrderID).Str("payment_status", req.PaymentStatus).Msg("no transition for payment status")
			return nil
		}

		if trx.GatewayPaymentID == nil {
			gatewayPaymentID := req.PfPaymentID
			trx.GatewayPaymentID = &gatewayPaymentID
		}
		trx.UpdatedAt = time.Now().Unix()

		if err := repo.UpdateTransactionStatus(ctx, trx); err != nil {
			return err
		}

		applied = &trx

		return nil
	})
	if err != nil {
		return err
	}

	if applied != nil {
		s.publishPaymentEvent(*applied)

		if applied.Status == domain.StatusCompleted {
			s.sendReceiptEmail(*applied)
		}
	}

	return nil
}

// confirmWithGateway posts the payload back to the gateway's validate
// endpoint, which answers VALID or INVALID. Transport failures and an open
// breaker are retryable; an INVALID verdict is final.
func (s *PaymentServiceImpl) confirmWithGateway(fields []paymentgateway.Field) error {
	body, err := s.circuitBreaker.Execute(func() ([]byte, error) {
		statusCode, respBody, err := httpclient.SendRequest(httpclient.HttpRequest{
			URL:    s.payfastClient.ValidateURL(),
			Method: "POST",
			Body:   []byte(paymentgateway.ValidationBody(fields)),
			Headers: map[string]string{
				"Content-Type": "application/x-www-form-urlencoded",
			},
		})
		if err != nil {
			return nil, err
		}
		if statusCode != http.StatusOK {
			return nil, fmt.Errorf("gateway validate endpoint returned non-OK status: %d", statusCode)
		}
		return respBody, nil
	})
	if err != nil {
		log.Error().Err(err).Str("component", "confirmWithGateway").Msg("")
		return errs.ErrGatewayUnavailable
	}

	if string(body) != "VALID" {
		return errs.ErrSignatureMismatch
	}

	return nil
}

func (s *PaymentServiceImpl) publishPaymentEvent(trx domain.Transaction) {
	eventType := "payment_completed"
	if trx.Status == domain.StatusCancelled {
		eventType = "payment_cancelled"
	}

	gatewayPaymentID := ""
	if trx.GatewayPaymentID != nil {
		gatewayPaymentID = *trx.GatewayPaymentID
	}

	kafkaMsg := dto.KafkaMessage{
		EventType: eventType,
		Data: dto.PaymentEvent{
			OrderID:          trx.OrderID,
			GatewayPaymentID: gatewayPaymentID,
			Status:           trx.Status,
			AmountPaid:       trx.AmountPaid,
		},
	}

	jsonMsg, err := json.Marshal(kafkaMsg)
	if err != nil {
		log.Error().Err(err).Str("component", "publishPaymentEvent").Msg("")
		return
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		err = s.writeKafkaMessageWithKey(jsonMsg, trx.OrderID)
		if err == nil {
			return
		}
		log.Error().Err(err).Str("component", "publishPaymentEvent").Msg("")
		time.Sleep(time.Second * time.Duration(i+1)) // Exponential backoff
	}

	// The transaction is already committed; the event is best-effort and a
	// redelivered notification will not re-emit it.
	log.Error().Err(err).Str("component", "publishPaymentEvent").Str("order_id", trx.OrderID).Msgf("failed to write Kafka message after %d attempts", maxRetries)
}

func (s *PaymentServiceImpl) writeKafkaMessageWithKey(msg []byte, key string) error {
	_, err := s.kafkaProducer.WriteMessages(
		kafka.Message{
			Key:   []byte(key),
			Value: msg,
		},
	)
	return err
}

func (s *PaymentServiceImpl) sendReceiptEmail(trx domain.Transaction) {
	if s.config.SMTPConfig.Server == "" || trx.EmailAddress == "" {
		return
	}

	message := gomail.NewMessage()
	message.SetHeader("From", s.config.SMTPConfig.Sender)
	message.SetHeader("To", trx.EmailAddress)
	message.SetHeader("Subject", fmt.Sprintf("Payment received for %s", trx.ItemName))
	message.SetBody("text/plain", fmt.Sprintf("We received your payment of %.2f for order %s. Thank you!", trx.AmountPaid, trx.OrderID))

	err := utils.SendEmail(message, s.config.SMTPConfig.Sender, s.config.SMTPConfig.Password, s.config.SMTPConfig.Server, s.config.SMTPConfig.Port)
	if err != nil {
		log.Error().Err(err).Str("component", "sendReceiptEmail").Str("order_id", trx.OrderID).Msg("")
	}
}

func (s *PaymentServiceImpl) GetTransactions(ctx context.Context, filter pkgdto.Filter) (response pkgdto.Pagination, err error) {
	var transactionResponse []dto.TransactionResponse
	datas, err := s.repository.GetTransactions(ctx, filter)
	if err != nil {
		return
	}

	for _, data := range datas {
		transactionResponse = append(transactionResponse, dto.TransactionResponse{
			ID:               data.ID,
			OrderID:          data.OrderID,
			Amount:           data.Amount,
			AmountPaid:       data.AmountPaid,
			Status:           data.Status,
			GatewayPaymentID: data.GatewayPaymentID,
			ItemName:         data.ItemName,
			EmailAddress:     data.EmailAddress,
			CreatedAt:        data.CreatedAt,
		})
	}

	response.Records = transactionResponse

	return
}

// CancelAbandonedPayments sweeps initiated transactions the shopper never
// finished and moves them to cancelled. Runs on the cron scheduler.
func (s *PaymentServiceImpl) CancelAbandonedPayments() {
	log.Info().Str("component", "CancelAbandonedPayments").Msg("cron starts")

	transactions, err := s.repository.GetTransactions(context.Background(), pkgdto.Filter{
		Status:      domain.StatusInitiated,
		StaleBefore: time.Now().Add(-s.config.AbandonedPeriod).Unix(),
	})
	if err != nil {
		return
	}

	for _, trx := range transactions {
		orderID := trx.OrderID

		var applied *domain.Transaction

		err = s.repository.HandleTrx(context.Background(), func(ctx context.Context, repo repository.TransactionRepository) error {
			locked, err := repo.GetTransactionByOrderIDForUpdate(ctx, orderID)
			if err != nil {
				return err
			}

			// A notification may have landed between the sweep query and
			// the lock.
			if locked.Terminal() {
				return nil
			}

			locked.Status = domain.StatusCancelled
			locked.UpdatedAt = time.Now().Unix()

			if err := repo.UpdateTransactionStatus(ctx, locked); err != nil {
				return err
			}

			applied = &locked

			return nil
		})
		if err != nil {
			log.Error().Err(err).Str("component", "CancelAbandonedPayments").Str("order_id", orderID).Msg("")
			continue
		}

		if applied != nil {
			s.publishPaymentEvent(*applied)
		}
	}

	log.Info().Str("component", "CancelAbandonedPayments").Msg("cron ends")
}
