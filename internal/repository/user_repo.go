package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// UserRepository handles database operations for profiles and their balances
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *UserRepository) WithTx(tx database.DBTX) *UserRepository {
	return &UserRepository{db: tx}
}

const userColumns = `id, family_id, name, role, points, balance, pet_points,
	allowance_amount, allowance_frequency, allowance_day, allowance_threshold, allowance_paid_through,
	pin_hash, high_score_math, high_score_english, avatar_color, created_at, updated_at`

func scanUser(s rowScanner) (*models.User, error) {
	user := &models.User{}
	var (
		amount, threshold sql.NullInt64
		frequency         sql.NullString
		day               sql.NullInt64
		paidThrough       sql.NullTime
	)
	err := s.Scan(
		&user.ID,
		&user.FamilyID,
		&user.Name,
		&user.Role,
		&user.Points,
		&user.Balance,
		&user.PetPoints,
		&amount,
		&frequency,
		&day,
		&threshold,
		&paidThrough,
		&user.PinHash,
		&user.HighScoreMath,
		&user.HighScoreEnglish,
		&user.AvatarColor,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid && frequency.Valid && day.Valid {
		user.Allowance = &models.AllowanceSettings{
			Amount:         amount.Int64,
			Frequency:      models.AllowanceFrequency(frequency.String),
			Day:            int(day.Int64),
			PointThreshold: threshold.Int64,
		}
	}
	if paidThrough.Valid {
		t := paidThrough.Time
		user.AllowancePaidThrough = &t
	}
	return user, nil
}

// CreateUser inserts a new profile and sets its ID
func (r *UserRepository) CreateUser(user *models.User) error {
	now := time.Now()
	query := `
		INSERT INTO users (family_id, name, role, pin_hash, avatar_color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, user.FamilyID, user.Name, user.Role, user.PinHash, user.AvatarColor, now, now)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a profile by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetFamilyUser retrieves a profile only if it belongs to the family
func (r *UserRepository) GetFamilyUser(familyID, id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ? AND family_id = ?"
	user, err := scanUser(r.db.QueryRow(query, id, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) listUsers(query string, args ...any) ([]models.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// ListFamilyUsers returns every profile in a family, parents first
func (r *UserRepository) ListFamilyUsers(familyID int64) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE family_id = ? ORDER BY role DESC, name"
	return r.listUsers(query, familyID)
}

// ListFamilyUsersByRole returns the profiles of one role in a family
func (r *UserRepository) ListFamilyUsersByRole(familyID int64, role models.Role) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE family_id = ? AND role = ? ORDER BY name"
	return r.listUsers(query, familyID, role)
}

// ListChildrenWithAllowance returns every child, across families, with allowance configured
func (r *UserRepository) ListChildrenWithAllowance() ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE role = ? AND allowance_amount IS NOT NULL ORDER BY id"
	return r.listUsers(query, models.RoleChild)
}

// UpdateProfile saves name and avatar
func (r *UserRepository) UpdateProfile(id int64, name, avatarColor string) error {
	query := "UPDATE users SET name = ?, avatar_color = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, name, avatarColor, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePIN stores a new PIN hash; an empty hash removes the PIN
func (r *UserRepository) UpdatePIN(id int64, pinHash string) error {
	query := "UPDATE users SET pin_hash = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, pinHash, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	return nil
}

// UpdateBalances writes the authoritative points and money balances
func (r *UserRepository) UpdateBalances(id, points, balance int64) error {
	query := "UPDATE users SET points = ?, balance = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, points, balance, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}
	return nil
}

// UpdatePetPoints writes the authoritative energy balance
func (r *UserRepository) UpdatePetPoints(id, petPoints int64) error {
	query := "UPDATE users SET pet_points = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, petPoints, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update pet points: %w", err)
	}
	return nil
}

// ZeroBalance empties the balance only if it still equals expected.
// It reports whether the row was changed.
func (r *UserRepository) ZeroBalance(id, expected int64) (bool, error) {
	query := "UPDATE users SET balance = 0, updated_at = ? WHERE id = ? AND balance = ?"
	result, err := r.db.Exec(query, time.Now(), id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to zero balance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to zero balance: %w", err)
	}
	return n == 1, nil
}

// UpdateHighScore stores a new quiz record for one category
func (r *UserRepository) UpdateHighScore(id int64, category models.QuizCategory, score int) error {
	column := "high_score_math"
	if category == models.QuizEnglish {
		column = "high_score_english"
	}
	query := "UPDATE users SET " + column + " = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, score, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update high score: %w", err)
	}
	return nil
}

// UpdateAllowance stores or clears allowance settings. Changing the settings
// resets the paid-through marker so the next payday starts fresh.
func (r *UserRepository) UpdateAllowance(id int64, settings *models.AllowanceSettings) error {
	var amount, frequency, day, threshold any
	if settings != nil {
		amount = settings.Amount
		frequency = string(settings.Frequency)
		day = settings.Day
		threshold = settings.PointThreshold
	}
	query := `
		UPDATE users
		SET allowance_amount = ?, allowance_frequency = ?, allowance_day = ?, allowance_threshold = ?,
			allowance_paid_through = NULL, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, amount, frequency, day, threshold, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update allowance: %w", err)
	}
	return nil
}

// SetAllowancePaidThrough records the payday up to which allowance has been settled
func (r *UserRepository) SetAllowancePaidThrough(id int64, paidThrough time.Time) error {
	query := "UPDATE users SET allowance_paid_through = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, paidThrough, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update allowance paid through: %w", err)
	}
	return nil
}

// DeleteUser removes a profile and, by cascade, everything it owns
func (r *UserRepository) DeleteUser(id int64) error {
	if _, err := r.db.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// CountParents returns how many parent profiles a family has
func (r *UserRepository) CountParents(familyID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM users WHERE family_id = ? AND role = ?"
	if err := r.db.QueryRow(query, familyID, models.RoleParent).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count parents: %w", err)
	}
	return count, nil
}
