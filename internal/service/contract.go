package service

import (
	"context"

	"github.com/clickcart/storefront/payment-service/internal/dto"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
)

type PaymentService interface {
	InitiatePayment(ctx context.Context, req dto.PaymentRequest) (resp dto.PaymentResponse, err error)
	HandlePaymentNotification(ctx context.Context, req dto.PaymentNotification) (err error)
	GetTransactions(ctx context.Context, filter pkgdto.Filter) (response pkgdto.Pagination, err error)
	CancelAbandonedPayments()
}
