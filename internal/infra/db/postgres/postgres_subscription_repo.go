package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-service/internal/domain"
	"subscription-service/internal/domain/model"
	"subscription-service/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

const subJoinCols = `
s.id, s.user_id, s.plan_id, s.status, s.start_date, s.end_date, s.created_at,
p.id, p.name, p.price, p.duration_days, p.features, p.created_at`

func (r *SubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	const sql = `
INSERT INTO subscriptions (id, user_id, plan_id, status, start_date, end_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET plan_id    = EXCLUDED.plan_id,
      status     = EXCLUDED.status,
      start_date = EXCLUDED.start_date,
      end_date   = EXCLUDED.end_date;
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, sql,
		sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.StartDate, sub.EndDate, sub.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// one_active_per_user partial unique index
			return domain.ErrConflict
		}
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const sql = `
SELECT ` + subJoinCols + `
  FROM subscriptions s
  JOIN plans p ON p.id = s.plan_id
 WHERE s.user_id = $1 AND s.status = 'active'
 LIMIT 1;
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sub, err := scanSubJoined(ex.QueryRow(ctx, sql, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoActiveSubscription
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return sub, nil
}

func (r *SubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const sql = `
SELECT ` + subJoinCols + `
  FROM subscriptions s
  JOIN plans p ON p.id = s.plan_id
 WHERE s.user_id = $1
 ORDER BY s.start_date DESC;
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	var out []*model.Subscription
	for rows.Next() {
		sub, err := scanSubJoined(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *SubscriptionRepo) ExpireActiveByUser(ctx context.Context, tx repository.Tx, userID string) error {
	const sql = `
UPDATE subscriptions SET status = 'expired'
 WHERE user_id = $1 AND status = 'active';
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, sql, userID); err != nil {
		return fmt.Errorf("expire active subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) CancelActive(ctx context.Context, tx repository.Tx, userID string) (bool, error) {
	const sql = `
UPDATE subscriptions SET status = 'cancelled'
 WHERE user_id = $1 AND status = 'active';
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	ct, err := ex.Exec(ctx, sql, userID)
	if err != nil {
		return false, fmt.Errorf("cancel subscription: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *SubscriptionRepo) MarkExpired(ctx context.Context, tx repository.Tx, subID string) (bool, error) {
	const sql = `
UPDATE subscriptions SET status = 'expired'
 WHERE id = $1 AND status = 'active';
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	ct, err := ex.Exec(ctx, sql, subID)
	if err != nil {
		return false, fmt.Errorf("mark subscription expired: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *SubscriptionRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) ([]repository.ExpiredRecord, error) {
	const sql = `
UPDATE subscriptions SET status = 'expired'
 WHERE status = 'active' AND end_date < $1
RETURNING id, user_id;
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, sql, now)
	if err != nil {
		return nil, fmt.Errorf("expire due subscriptions: %w", err)
	}
	defer rows.Close()
	var out []repository.ExpiredRecord
	for rows.Next() {
		var rec repository.ExpiredRecord
		if err := rows.Scan(&rec.SubscriptionID, &rec.UserID); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// LockUser takes a transaction-scoped advisory lock keyed on the user id so
// that check-then-mutate sequences for the same user are serialized.
func (r *SubscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	pgtx, ok := tx.(pgx.Tx)
	if !ok {
		return domain.ErrInvalidExecContext
	}
	if _, err := pgtx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(userID)); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const sql = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}
	defer rows.Close()
	out := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}

func scanSubJoined(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	var p model.Plan
	var status string
	var features []byte
	if err := row.Scan(
		&s.ID, &s.UserID, &s.PlanID, &status, &s.StartDate, &s.EndDate, &s.CreatedAt,
		&p.ID, &p.Name, &p.Price, &p.DurationDays, &features, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, err
		}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	s.Status = model.SubscriptionStatus(status)
	s.Plan = &p
	return &s, nil
}
