package repository

import (
	"fmt"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// GameResultRepository handles database operations for finished quiz sessions
type GameResultRepository struct {
	db database.DBTX
}

// NewGameResultRepository creates a new game result repository
func NewGameResultRepository(db database.DBTX) *GameResultRepository {
	return &GameResultRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *GameResultRepository) WithTx(tx database.DBTX) *GameResultRepository {
	return &GameResultRepository{db: tx}
}

// CreateResult records a finished session and sets its ID
func (r *GameResultRepository) CreateResult(g *models.GameResult) error {
	query := `
		INSERT INTO game_results (family_id, child_id, category, score, correct_count, incorrect_count,
			points_earned, reward_amount, is_new_record, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		g.FamilyID, g.ChildID, g.Category, g.Score, g.CorrectCount, g.IncorrectCount,
		g.PointsEarned, g.RewardAmount, g.IsNewRecord, g.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}
	g.ID = id
	return nil
}

// ListResults returns a family's results newest first, optionally for one child
func (r *GameResultRepository) ListResults(familyID, childID int64, limit int) ([]models.GameResult, error) {
	query := `
		SELECT id, family_id, child_id, category, score, correct_count, incorrect_count,
			points_earned, reward_amount, is_new_record, played_at
		FROM game_results WHERE family_id = ?
	`
	args := []any{familyID}
	if childID != 0 {
		query += " AND child_id = ?"
		args = append(args, childID)
	}
	query += " ORDER BY played_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var g models.GameResult
		err := rows.Scan(&g.ID, &g.FamilyID, &g.ChildID, &g.Category, &g.Score, &g.CorrectCount,
			&g.IncorrectCount, &g.PointsEarned, &g.RewardAmount, &g.IsNewRecord, &g.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, g)
	}
	return results, rows.Err()
}
