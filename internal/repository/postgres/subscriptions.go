package postgres

import (
	"context"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepo — подписки чатов на дайджест (таблица digest_subscriptions)
type SubscriptionRepo struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepo(db *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// MarkEnabled включает/обновляет подписку chatID: интервал в минутах и валюта цен.
// Отсчёт интервала начинается заново.
func (r *SubscriptionRepo) MarkEnabled(ctx context.Context, chatID int64, intervalMinutes int, currency string) error {
	const query = `
		INSERT INTO digest_subscriptions (chat_id, interval_minutes, currency, enabled, last_sent_at)
		VALUES ($1, $2, $3, TRUE, NULL)
		ON CONFLICT (chat_id)
		DO UPDATE SET interval_minutes = EXCLUDED.interval_minutes,
		              currency = EXCLUDED.currency,
		              enabled = TRUE,
		              last_sent_at = NULL`
	_, err := r.db.Exec(ctx, query, chatID, intervalMinutes, currency)
	return err
}

func (r *SubscriptionRepo) MarkDisabled(ctx context.Context, chatID int64) error {
	const query = `UPDATE digest_subscriptions SET enabled = FALSE WHERE chat_id = $1`
	_, err := r.db.Exec(ctx, query, chatID)
	return err
}

// FindDue — подписки, которым пора отправить дайджест на момент now.
// Интервал сравнивается как interval, без перевода в минуты с плавающей точкой.
func (r *SubscriptionRepo) FindDue(ctx context.Context, now time.Time) ([]domain.DigestSubscription, error) {
	const query = `
		SELECT chat_id, currency
		FROM digest_subscriptions
		WHERE enabled = TRUE
		  AND (
			last_sent_at IS NULL
			OR $1::timestamptz - last_sent_at >= make_interval(mins => interval_minutes)
		  )
		ORDER BY chat_id`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DigestSubscription, error) {
		var s domain.DigestSubscription
		err := row.Scan(&s.ChatID, &s.Currency)
		return s, err
	})
}

func (r *SubscriptionRepo) MarkSent(ctx context.Context, chatID int64, at time.Time) error {
	const query = `UPDATE digest_subscriptions SET last_sent_at = $2 WHERE chat_id = $1`
	_, err := r.db.Exec(ctx, query, chatID, at)
	return err
}
