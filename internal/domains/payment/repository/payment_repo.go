package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =====================================================
// PAYMENT REPOSITORY IMPLEMENTATION
// =====================================================
type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `
	id, reference, user_id, enrollment_id, amount, currency,
	access_code, authorization_url, status, payment_method, metadata,
	paid_at, created_at, updated_at
`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	var metadataJSON []byte

	err := row.Scan(
		&p.ID,
		&p.Reference,
		&p.UserID,
		&p.EnrollmentID,
		&p.Amount,
		&p.Currency,
		&p.AccessCode,
		&p.AuthorizationURL,
		&p.Status,
		&p.PaymentMethod,
		&metadataJSON,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Metadata = map[string]interface{}{}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &p, nil
}

// Create inserts the payment. The unique reference constraint surfaces as ErrConflict.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, reference, user_id, enrollment_id, amount, currency,
			access_code, authorization_url, status, payment_method, metadata, paid_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.Metadata == nil {
		payment.Metadata = map[string]interface{}{}
	}

	metadataJSON, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		payment.ID,
		payment.Reference,
		payment.UserID,
		payment.EnrollmentID,
		payment.Amount,
		payment.Currency,
		payment.AccessCode,
		payment.AuthorizationURL,
		payment.Status,
		payment.PaymentMethod,
		metadataJSON,
		payment.PaidAt,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("payment reference %s already exists: %w", payment.Reference, model.ErrConflict)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by reference: %w", err)
	}
	return p, nil
}

// =====================================================
// CONDITIONAL TRANSITIONS
// =====================================================

func (r *paymentRepository) MarkSuccess(
	ctx context.Context,
	reference, method string,
	paidAt time.Time,
	details map[string]interface{},
) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'success',
			payment_method = $2,
			paid_at = $3,
			metadata = metadata || $4::jsonb,
			updated_at = NOW()
		WHERE reference = $1 AND status = 'pending'
	`
	return r.transition(ctx, "success", query, reference, method, paidAt, details)
}

func (r *paymentRepository) MarkFailed(ctx context.Context, reference string, details map[string]interface{}) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'failed',
			metadata = metadata || $2::jsonb,
			updated_at = NOW()
		WHERE reference = $1 AND status = 'pending'
	`
	return r.transition(ctx, "failed", query, reference, details)
}

func (r *paymentRepository) MarkCancelled(ctx context.Context, id uuid.UUID, audit map[string]interface{}) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'cancelled',
			metadata = metadata || $2::jsonb,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	return r.transition(ctx, "cancelled", query, id, audit)
}

// transition runs query with args; the last arg is the metadata patch and is JSON encoded.
func (r *paymentRepository) transition(ctx context.Context, target, query string, args ...interface{}) (bool, error) {
	last := len(args) - 1
	patch, _ := args[last].(map[string]interface{})
	if patch == nil {
		patch = map[string]interface{}{}
	}
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return false, fmt.Errorf("failed to marshal metadata patch: %w", err)
	}
	args[last] = patchJSON

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark payment %s: %w", target, err)
	}
	return tag.RowsAffected() == 1, nil
}

// =====================================================
// LISTING & REPORTING
// =====================================================

func (r *paymentRepository) List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, int, error) {
	var where utils.WhereBuilder
	if filter.UserID != nil {
		where.Add("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		where.Add("status = ?", filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM payments` + where.SQL()
	if err := r.pool.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where.SQL(), where.NextArg(1), where.NextArg(2))
	args := append(where.Args(), filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]model.Payment, 0, filter.Limit)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return payments, total, nil
}

func (r *paymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) AggregateByStatus(ctx context.Context, start, end time.Time) ([]model.RevenueStatusBreakdown, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY status
		ORDER BY status
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}
	defer rows.Close()

	var out []model.RevenueStatusBreakdown
	for rows.Next() {
		var b model.RevenueStatusBreakdown
		if err := rows.Scan(&b.Status, &b.Count, &b.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
