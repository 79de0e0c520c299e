package repository

import (
	"context"
	"database/sql"

	"github.com/clickcart/storefront/payment-service/internal/domain"
	pkgdto "github.com/clickcart/storefront/payment-service/pkg/dto"
	"github.com/clickcart/storefront/payment-service/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type TransactionRepositoryImpl struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func CreateTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &TransactionRepositoryImpl{
		db: db,
	}
}

func (r *TransactionRepositoryImpl) queryer() sqlx.QueryerContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *TransactionRepositoryImpl) execer() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *TransactionRepositoryImpl) CreateTransaction(ctx context.Context, data domain.Transaction) (id int64, err error) {
	query := "INSERT INTO transactions(order_id, amount, amount_paid, status, item_name, item_description, email_address, created_at, updated_at) VALUES (:order_id, :amount, :amount_paid, :status, :item_name, :item_description, :email_address, :created_at, :updated_at) returning id"

	rows, err := sqlx.NamedQueryContext(ctx, r.execer(), query, data)
	if err != nil {
		log.Error().Err(err).Str("component", "CreateTransaction").Msg("")
		return 0, errs.ErrInternalServer
	}
	defer rows.Close()

	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			log.Error().Err(err).Str("component", "CreateTransaction").Msg("")
			return 0, errs.ErrInternalServer
		}
	}

	return id, nil
}

func (r *TransactionRepositoryImpl) GetTransactionByOrderID(ctx context.Context, orderID string) (data domain.Transaction, err error) {
	row := r.queryer().QueryRowxContext(ctx, "SELECT * FROM transactions WHERE order_id = $1", orderID)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrTransactionNotFound
		}
		log.Error().Err(err).Str("component", "GetTransactionByOrderID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

// GetTransactionByOrderIDForUpdate takes a row lock so concurrent
// notifications for the same order id serialize on the ledger. Only valid
// inside HandleTrx.
func (r *TransactionRepositoryImpl) GetTransactionByOrderIDForUpdate(ctx context.Context, orderID string) (data domain.Transaction, err error) {
	row := r.queryer().QueryRowxContext(ctx, "SELECT * FROM transactions WHERE order_id = $1 FOR UPDATE", orderID)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrTransactionNotFound
		}
		log.Error().Err(err).Str("component", "GetTransactionByOrderIDForUpdate").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *TransactionRepositoryImpl) UpdateTransactionStatus(ctx context.Context, data domain.Transaction) (err error) {
	query := "UPDATE transactions SET status = :status, amount_paid = :amount_paid, gateway_payment_id = :gateway_payment_id, updated_at = :updated_at WHERE id = :id"

	_, err = sqlx.NamedExecContext(ctx, r.execer(), query, data)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateTransactionStatus").Msg("")
		return errs.ErrInternalServer
	}

	return nil
}

func (r *TransactionRepositoryImpl) GetTransactions(ctx context.Context, filter pkgdto.Filter) (data []domain.Transaction, err error) {
	query := "SELECT * FROM transactions WHERE 1=1"

	args := make(map[string]interface{})

	if filter.Status != "" {
		query += " AND status = :status"
		args["status"] = filter.Status
	}

	if filter.StaleBefore != 0 {
		query += " AND created_at < :stale_before"
		args["stale_before"] = filter.StaleBefore
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit != 0 && filter.Page != 0 {
		offset := (filter.Page - 1) * filter.Limit
		query += " LIMIT :limit OFFSET :offset"
		args["limit"] = filter.Limit
		args["offset"] = offset
	}

	nstmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("component", "GetTransactions").Msg("")
		return nil, errs.ErrInternalServer
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &data, args)
	if err != nil {
		log.Error().Err(err).Str("component", "GetTransactions").Msg("")
		return nil, errs.ErrInternalServer
	}

	return
}

func (r *TransactionRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo TransactionRepository) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		log.Error().Err(err).Str("component", "HandleTrx").Msg("")
		return errs.ErrInternalServer
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	txRepo := &TransactionRepositoryImpl{
		db: r.db,
		tx: tx,
	}

	err = fn(ctx, txRepo)

	return err
}
