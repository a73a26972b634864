package service

import (
	"strings"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// EventInput holds the fields of a new calendar event. Recurring events use
// DayOfWeek (1=Monday..7=Sunday), one-off events use SpecificDate.
type EventInput struct {
	Title        string `json:"title"`
	IsRecurring  bool   `json:"isRecurring"`
	DayOfWeek    int    `json:"dayOfWeek"`
	SpecificDate string `json:"specificDate"`
	Time         string `json:"time"`
	Color        string `json:"color"`
}

func (in EventInput) validate() error {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if in.IsRecurring {
		if in.DayOfWeek < 1 || in.DayOfWeek > 7 {
			return validation.ValidationError{Field: "dayOfWeek", Message: "day of week must be between 1 and 7"}
		}
	} else if err := validation.ValidateDate(in.SpecificDate); err != nil {
		return err
	}
	if err := validation.ValidateClock(in.Time); err != nil {
		return err
	}
	return validation.ValidateColor(in.Color)
}

// CalendarService manages per-child schedule annotations
type CalendarService struct {
	events *repository.CalendarRepository
	users  *repository.UserRepository
}

// NewCalendarService creates a new calendar service
func NewCalendarService(db *database.DB) *CalendarService {
	return &CalendarService{
		events: repository.NewCalendarRepository(db),
		users:  repository.NewUserRepository(db),
	}
}

// Create adds an event to a child's calendar
func (s *CalendarService) Create(actor models.Actor, childID int64, in EventInput) (*models.CalendarEvent, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := in.validate(); err != nil {
		return nil, err
	}
	child, err := loadChild(s.users, actor, childID)
	if err != nil {
		return nil, err
	}

	event := &models.CalendarEvent{
		FamilyID:    actor.FamilyID,
		ChildID:     child.ID,
		Title:       in.Title,
		IsRecurring: in.IsRecurring,
		Time:        in.Time,
		Color:       in.Color,
	}
	if in.IsRecurring {
		event.DayOfWeek = in.DayOfWeek
	} else {
		event.SpecificDate = in.SpecificDate
	}
	if err := s.events.CreateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

// List returns every event visible to the actor
func (s *CalendarService) List(actor models.Actor, childID int64) ([]models.CalendarEvent, error) {
	scoped, err := scopeChild(actor, childID)
	if err != nil {
		return nil, err
	}
	return s.events.ListEvents(actor.FamilyID, scoped)
}

// EventsOn returns the events falling on one day, one-off and weekly alike
func (s *CalendarService) EventsOn(actor models.Actor, childID int64, day time.Time) ([]models.CalendarEvent, error) {
	events, err := s.List(actor, childID)
	if err != nil {
		return nil, err
	}
	matched := make([]models.CalendarEvent, 0, len(events))
	for i := range events {
		if events[i].OccursOn(day) {
			matched = append(matched, events[i])
		}
	}
	return matched, nil
}

// Delete removes an event
func (s *CalendarService) Delete(actor models.Actor, eventID int64) error {
	if err := requireParent(actor); err != nil {
		return err
	}
	event, err := s.events.GetEvent(actor.FamilyID, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	return s.events.DeleteEvent(event.ID)
}
