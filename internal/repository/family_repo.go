package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// FamilyRepository handles database operations for families and their login sessions
type FamilyRepository struct {
	db database.DBTX
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *FamilyRepository) WithTx(tx database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: tx}
}

const familyColumns = `id, name, email, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), family_code, created_at, updated_at`

func scanFamily(s rowScanner) (*models.Family, error) {
	family := &models.Family{}
	err := s.Scan(
		&family.ID,
		&family.Name,
		&family.Email,
		&family.PasswordHash,
		&family.OAuthProvider,
		&family.OAuthSubject,
		&family.FamilyCode,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	return family, err
}

// CreateFamily inserts a new family
func (r *FamilyRepository) CreateFamily(name, email, passwordHash, familyCode string) (*models.Family, error) {
	now := time.Now()
	query := `
		INSERT INTO families (name, email, password_hash, family_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, name, email, passwordHash, familyCode, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return &models.Family{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		FamilyCode:   familyCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *FamilyRepository) getFamily(where string, arg any) (*models.Family, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE " + where
	family, err := scanFamily(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	return r.getFamily("id = ?", familyID)
}

// GetFamilyByEmail retrieves a family by its login email
func (r *FamilyRepository) GetFamilyByEmail(email string) (*models.Family, error) {
	return r.getFamily("email = ?", email)
}

// GetFamilyByCode retrieves a family by its join code
func (r *FamilyRepository) GetFamilyByCode(familyCode string) (*models.Family, error) {
	return r.getFamily("family_code = ?", familyCode)
}

// GetFamilyByOAuth retrieves a family linked to an OAuth identity
func (r *FamilyRepository) GetFamilyByOAuth(provider, subject string) (*models.Family, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE oauth_provider = ? AND oauth_subject = ?"
	family, err := scanFamily(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family by oauth: %w", err)
	}
	return family, nil
}

// LinkOAuthProvider attaches an OAuth identity to a family
func (r *FamilyRepository) LinkOAuthProvider(familyID int64, provider, subject string) error {
	query := "UPDATE families SET oauth_provider = ?, oauth_subject = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, provider, subject, time.Now(), familyID); err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// UpdateFamilyName renames a family
func (r *FamilyRepository) UpdateFamilyName(familyID int64, name string) error {
	query := "UPDATE families SET name = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, name, time.Now(), familyID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// FamilyCodeExists checks whether a join code is already taken
func (r *FamilyRepository) FamilyCodeExists(familyCode string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM families WHERE family_code = ?", familyCode).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check family code: %w", err)
	}
	return count > 0, nil
}

// CreateSession creates a new session for a family
func (r *FamilyRepository) CreateSession(sessionID string, familyID int64, expiresAt time.Time) (*models.Session, error) {
	now := time.Now()
	query := "INSERT INTO sessions (id, family_id, expires_at, created_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, familyID, expiresAt, now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		FamilyID:  familyID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID
func (r *FamilyRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, family_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(&session.ID, &session.FamilyID, &session.ExpiresAt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *FamilyRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *FamilyRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
