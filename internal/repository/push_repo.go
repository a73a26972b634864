package repository

import (
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// PushRepository handles database operations for web push subscriptions
type PushRepository struct {
	db database.DBTX
}

// NewPushRepository creates a new push subscription repository
func NewPushRepository(db database.DBTX) *PushRepository {
	return &PushRepository{db: db}
}

// SaveSubscription registers an endpoint for a profile, replacing any previous owner
func (r *PushRepository) SaveSubscription(sub *models.PushSubscription) error {
	if _, err := r.db.Exec("DELETE FROM push_subscriptions WHERE endpoint = ?", sub.Endpoint); err != nil {
		return fmt.Errorf("failed to replace subscription: %w", err)
	}

	now := time.Now()
	query := "INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, now)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	sub.ID = id
	sub.CreatedAt = now
	return nil
}

// ListUserSubscriptions returns the endpoints registered by a profile
func (r *PushRepository) ListUserSubscriptions(userID int64) ([]models.PushSubscription, error) {
	query := "SELECT id, user_id, endpoint, p256dh, auth, created_at FROM push_subscriptions WHERE user_id = ?"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// DeleteSubscription removes an endpoint
func (r *PushRepository) DeleteSubscription(endpoint string) error {
	if _, err := r.db.Exec("DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
