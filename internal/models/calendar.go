package models

import "time"

// CalendarEvent is a scheduling note for a child, either weekly or on one date
type CalendarEvent struct {
	ID           int64     `json:"id"`
	FamilyID     int64     `json:"familyId"`
	ChildID      int64     `json:"childId"`
	Title        string    `json:"title"`
	IsRecurring  bool      `json:"isRecurring"`
	DayOfWeek    int       `json:"dayOfWeek,omitempty"`
	SpecificDate string    `json:"specificDate,omitempty"`
	Time         string    `json:"time,omitempty"`
	Color        string    `json:"color,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OccursOn reports whether the event falls on the given day
func (e *CalendarEvent) OccursOn(day time.Time) bool {
	if e.IsRecurring {
		return e.DayOfWeek == WeekdayIndex(day.Weekday())
	}
	return e.SpecificDate == FormatDate(day)
}

// PushSubscription is a browser endpoint registered for notifications
type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"createdAt"`
}
