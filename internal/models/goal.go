package models

import "time"

// Goal is a savings target compared against a child's balance
type Goal struct {
	ID           int64     `json:"id"`
	FamilyID     int64     `json:"familyId"`
	ChildID      int64     `json:"childId"`
	Title        string    `json:"title"`
	TargetAmount int64     `json:"targetAmount"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GoalProgress is a goal measured against the child's live balance
type GoalProgress struct {
	Goal      Goal    `json:"goal"`
	Balance   int64   `json:"balance"`
	Remaining int64   `json:"remaining"`
	Percent   float64 `json:"percent"`
	Reached   bool    `json:"reached"`
}

// PayoutRecord is the append-only record of a cash-out
type PayoutRecord struct {
	ID       int64     `json:"id"`
	FamilyID int64     `json:"familyId"`
	ChildID  int64     `json:"childId"`
	Amount   int64     `json:"amount"`
	Date     time.Time `json:"date"`
}
