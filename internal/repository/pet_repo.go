package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// PetRepository handles database operations for pets
type PetRepository struct {
	db database.DBTX
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db database.DBTX) *PetRepository {
	return &PetRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *PetRepository) WithTx(tx database.DBTX) *PetRepository {
	return &PetRepository{db: tx}
}

// CreatePet inserts a pet and sets its ID
func (r *PetRepository) CreatePet(p *models.Pet) error {
	now := time.Now()
	query := `
		INSERT INTO pets (family_id, child_id, name, type, stage, health, happiness, experience, last_interaction, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		p.FamilyID, p.ChildID, p.Name, p.Type, p.Stage, p.Health, p.Happiness, p.Experience, p.LastInteraction, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	return nil
}

const petColumns = `id, family_id, child_id, name, type, stage, health, happiness, experience, last_interaction, created_at`

func scanPet(s rowScanner) (*models.Pet, error) {
	p := &models.Pet{}
	err := s.Scan(&p.ID, &p.FamilyID, &p.ChildID, &p.Name, &p.Type, &p.Stage, &p.Health, &p.Happiness,
		&p.Experience, &p.LastInteraction, &p.CreatedAt)
	return p, err
}

// GetPetByChild retrieves the pet owned by a child
func (r *PetRepository) GetPetByChild(childID int64) (*models.Pet, error) {
	p, err := scanPet(r.db.QueryRow("SELECT "+petColumns+" FROM pets WHERE child_id = ?", childID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return p, nil
}

// ListFamilyPets returns every pet in a family
func (r *PetRepository) ListFamilyPets(familyID int64) ([]models.Pet, error) {
	rows, err := r.db.Query("SELECT "+petColumns+" FROM pets WHERE family_id = ? ORDER BY id", familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	var pets []models.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, *p)
	}
	return pets, rows.Err()
}

// UpdatePet stores the pet's stats
func (r *PetRepository) UpdatePet(p *models.Pet) error {
	query := `
		UPDATE pets
		SET name = ?, stage = ?, health = ?, happiness = ?, experience = ?, last_interaction = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, p.Name, p.Stage, p.Health, p.Happiness, p.Experience, p.LastInteraction, p.ID); err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	return nil
}
