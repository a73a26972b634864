package models

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskTodo            TaskStatus = "TODO"
	TaskPendingApproval TaskStatus = "PENDING_APPROVAL"
	TaskApproved        TaskStatus = "APPROVED"
	TaskRejected        TaskStatus = "REJECTED"
)

// Frequency is the recurrence rule of a recurring task
type Frequency string

const (
	FrequencyDaily  Frequency = "DAILY"
	FrequencyWeekly Frequency = "WEEKLY"
)

// DefaultPenalty is the number of points deducted when a task is approved after its date
const DefaultPenalty = 5

// Task is a chore assigned to a child for a calendar day
type Task struct {
	ID                 int64      `json:"id"`
	FamilyID           int64      `json:"familyId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	RewardPoints       int64      `json:"rewardPoints"`
	RewardMoney        int64      `json:"rewardMoney"`
	AssignedToID       int64      `json:"assignedToId"`
	Date               string     `json:"date"`
	Status             TaskStatus `json:"status"`
	CreatedBy          Role       `json:"createdBy"`
	IsRecurring        bool       `json:"isRecurring"`
	RecurringFrequency Frequency  `json:"recurringFrequency,omitempty"`
	Penalty            int64      `json:"penalty"`
	ProofImage         string     `json:"proofImage,omitempty"`
	Feedback           string     `json:"feedback,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// IsOverdue reports whether the task's day is strictly before today
func (t *Task) IsOverdue(today string) bool {
	return t.Date < today
}

// IsLocked reports whether the task's day has not started yet
func (t *Task) IsLocked(today string) bool {
	return t.Date > today
}

// IsChildCreated reports whether a child proposed this task
func (t *Task) IsChildCreated() bool {
	return t.CreatedBy == RoleChild
}
