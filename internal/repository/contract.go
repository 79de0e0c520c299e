package repository

import (
	"context"

	"github.com/clickcart/storefront/payment-service/internal/domain"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
)

type TransactionRepository interface {
	HandleTrx(ctx context.Context, fn func(ctx context.Context, repo TransactionRepository) error) error

	CreateTransaction(ctx context.Context, data domain.Transaction) (id int64, err error)
	GetTransactionByOrderID(ctx context.Context, orderID string) (data domain.Transaction, err error)
	GetTransactionByOrderIDForUpdate(ctx context.Context, orderID string) (data domain.Transaction, err error)
	UpdateTransactionStatus(ctx context.Context, data domain.Transaction) (err error)
	GetTransactions(ctx context.Context, filter pkgdto.Filter) (data []domain.Transaction, err error)
}
