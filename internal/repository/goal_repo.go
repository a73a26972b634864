package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// GoalRepository handles database operations for savings goals and payout history
type GoalRepository struct {
	db database.DBTX
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db database.DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *GoalRepository) WithTx(tx database.DBTX) *GoalRepository {
	return &GoalRepository{db: tx}
}

// CreateGoal inserts a goal and sets its ID
func (r *GoalRepository) CreateGoal(goal *models.Goal) error {
	now := time.Now()
	query := `
		INSERT INTO goals (family_id, child_id, title, target_amount, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, goal.FamilyID, goal.ChildID, goal.Title, goal.TargetAmount, goal.ImageURL, now)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	goal.ID = id
	goal.CreatedAt = now
	return nil
}

// GetGoal retrieves a goal only if it belongs to the family
func (r *GoalRepository) GetGoal(familyID, id int64) (*models.Goal, error) {
	query := `
		SELECT id, family_id, child_id, title, target_amount, image_url, created_at
		FROM goals WHERE id = ? AND family_id = ?
	`
	goal := &models.Goal{}
	err := r.db.QueryRow(query, id, familyID).Scan(
		&goal.ID, &goal.FamilyID, &goal.ChildID, &goal.Title, &goal.TargetAmount, &goal.ImageURL, &goal.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListFamilyGoals returns the goals of a family, optionally limited to one child
func (r *GoalRepository) ListFamilyGoals(familyID, childID int64) ([]models.Goal, error) {
	query := `
		SELECT id, family_id, child_id, title, target_amount, image_url, created_at
		FROM goals WHERE family_id = ?
	`
	args := []any{familyID}
	if childID != 0 {
		query += " AND child_id = ?"
		args = append(args, childID)
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.FamilyID, &g.ChildID, &g.Title, &g.TargetAmount, &g.ImageURL, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal saves a goal's title, target and image
func (r *GoalRepository) UpdateGoal(goal *models.Goal) error {
	query := "UPDATE goals SET title = ?, target_amount = ?, image_url = ? WHERE id = ?"
	if _, err := r.db.Exec(query, goal.Title, goal.TargetAmount, goal.ImageURL, goal.ID); err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

// DeleteGoal removes a goal
func (r *GoalRepository) DeleteGoal(id int64) error {
	if _, err := r.db.Exec("DELETE FROM goals WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

// CreatePayout appends a payout record and sets its ID
func (r *GoalRepository) CreatePayout(p *models.PayoutRecord) error {
	query := "INSERT INTO payouts (family_id, child_id, amount, paid_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, p.FamilyID, p.ChildID, p.Amount, p.Date)
	if err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}
	p.ID = id
	return nil
}

// ListPayouts returns a family's payout history newest first, optionally for one child
func (r *GoalRepository) ListPayouts(familyID, childID int64) ([]models.PayoutRecord, error) {
	query := "SELECT id, family_id, child_id, amount, paid_at FROM payouts WHERE family_id = ?"
	args := []any{familyID}
	if childID != 0 {
		query += " AND child_id = ?"
		args = append(args, childID)
	}
	query += " ORDER BY paid_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []models.PayoutRecord
	for rows.Next() {
		var p models.PayoutRecord
		if err := rows.Scan(&p.ID, &p.FamilyID, &p.ChildID, &p.Amount, &p.Date); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
