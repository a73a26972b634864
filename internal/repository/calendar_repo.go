package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// CalendarRepository handles database operations for calendar events and push subscriptions
type CalendarRepository struct {
	db database.DBTX
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db database.DBTX) *CalendarRepository {
	return &CalendarRepository{db: db}
}

const eventColumns = `id, family_id, child_id, title, is_recurring, day_of_week, specific_date, event_time, color, created_at`

func scanEvent(s rowScanner) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{}
	err := s.Scan(&e.ID, &e.FamilyID, &e.ChildID, &e.Title, &e.IsRecurring, &e.DayOfWeek,
		&e.SpecificDate, &e.Time, &e.Color, &e.CreatedAt)
	return e, err
}

// CreateEvent inserts an event and sets its ID
func (r *CalendarRepository) CreateEvent(e *models.CalendarEvent) error {
	now := time.Now()
	query := `
		INSERT INTO calendar_events (family_id, child_id, title, is_recurring, day_of_week, specific_date, event_time, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		e.FamilyID, e.ChildID, e.Title, e.IsRecurring, e.DayOfWeek, e.SpecificDate, e.Time, e.Color, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

// GetEvent retrieves an event only if it belongs to the family
func (r *CalendarRepository) GetEvent(familyID, id int64) (*models.CalendarEvent, error) {
	query := "SELECT " + eventColumns + " FROM calendar_events WHERE id = ? AND family_id = ?"
	e, err := scanEvent(r.db.QueryRow(query, id, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// ListEvents returns a family's events, optionally for one child
func (r *CalendarRepository) ListEvents(familyID, childID int64) ([]models.CalendarEvent, error) {
	query := "SELECT " + eventColumns + " FROM calendar_events WHERE family_id = ?"
	args := []any{familyID}
	if childID != 0 {
		query += " AND child_id = ?"
		args = append(args, childID)
	}
	query += " ORDER BY event_time, id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// DeleteEvent removes an event
func (r *CalendarRepository) DeleteEvent(id int64) error {
	if _, err := r.db.Exec("DELETE FROM calendar_events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
