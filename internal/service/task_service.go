package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/ledger"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// TaskInput holds the parent-editable fields of a task
type TaskInput struct {
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	RewardPoints       int64            `json:"rewardPoints"`
	RewardMoney        int64            `json:"rewardMoney"`
	AssignedToID       int64            `json:"assignedToId"`
	Date               string           `json:"date"`
	IsRecurring        bool             `json:"isRecurring"`
	RecurringFrequency models.Frequency `json:"recurringFrequency"`
	Penalty            *int64           `json:"penalty,omitempty"`
}

// Reward is a points and money pair
type Reward struct {
	Points int64 `json:"points"`
	Money  int64 `json:"money"`
}

// ApprovalResult describes what an approval did
type ApprovalResult struct {
	Task      models.Task     `json:"task"`
	Credited  Reward          `json:"credited"`
	Balances  ledger.Balances `json:"balances"`
	Successor *models.Task    `json:"successor,omitempty"`
}

// EffectiveReward decides what approving task on day today credits, and what
// reward is stored on the approved task.
//
// A child-created task takes the parent's rating for both. A parent task
// approved after its date credits only the penalty and keeps its stored reward.
// Anything else credits the stored reward unchanged.
func EffectiveReward(task models.Task, rating *Reward, today string) (credit, stored Reward, err error) {
	if task.IsChildCreated() {
		if rating == nil {
			return Reward{}, Reward{}, ErrRatingRequired
		}
		if err := validation.ValidateAmount("points", rating.Points); err != nil {
			return Reward{}, Reward{}, err
		}
		if err := validation.ValidateAmount("money", rating.Money); err != nil {
			return Reward{}, Reward{}, err
		}
		return *rating, *rating, nil
	}

	stored = Reward{Points: task.RewardPoints, Money: task.RewardMoney}
	if task.IsOverdue(today) {
		return Reward{Points: -task.Penalty, Money: 0}, stored, nil
	}
	return stored, stored, nil
}

// NextOccurrence builds the successor of an approved recurring task
func NextOccurrence(task models.Task) (models.Task, error) {
	date, err := models.AdvanceDate(task.Date, task.RecurringFrequency)
	if err != nil {
		return models.Task{}, err
	}
	next := task
	next.ID = 0
	next.Date = date
	next.Status = models.TaskTodo
	next.ProofImage = ""
	next.Feedback = ""
	return next, nil
}

// TaskService runs the task lifecycle
type TaskService struct {
	db             *database.DB
	tasks          *repository.TaskRepository
	users          *repository.UserRepository
	defaultPenalty int64
	notifier       Notifier
	now            func() time.Time
}

// NewTaskService creates a task service
func NewTaskService(db *database.DB, defaultPenalty int64, notifier Notifier) *TaskService {
	return &TaskService{
		db:             db,
		tasks:          repository.NewTaskRepository(db),
		users:          repository.NewUserRepository(db),
		defaultPenalty: defaultPenalty,
		notifier:       notifier,
		now:            time.Now,
	}
}

// Today is the current calendar day in server time
func (s *TaskService) Today() string {
	return models.FormatDate(s.now())
}

func validateTaskInput(in TaskInput) error {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateDate(in.Date); err != nil {
		return err
	}
	if err := validation.ValidateAmount("rewardPoints", in.RewardPoints); err != nil {
		return err
	}
	if err := validation.ValidateAmount("rewardMoney", in.RewardMoney); err != nil {
		return err
	}
	if in.Penalty != nil {
		if err := validation.ValidateAmount("penalty", *in.Penalty); err != nil {
			return err
		}
	}
	if in.IsRecurring && in.RecurringFrequency != models.FrequencyDaily && in.RecurringFrequency != models.FrequencyWeekly {
		return validation.ValidationError{Field: "recurringFrequency", Message: "must be DAILY or WEEKLY"}
	}
	return nil
}

func (s *TaskService) getTask(actor models.Actor, taskID int64) (*models.Task, error) {
	task, err := s.tasks.GetTask(actor.FamilyID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if !actor.IsParent() && task.AssignedToID != actor.UserID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask lets a parent assign a task with a fixed reward
func (s *TaskService) CreateTask(actor models.Actor, in TaskInput) (*models.Task, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}
	if _, err := loadChild(s.users, actor, in.AssignedToID); err != nil {
		return nil, err
	}

	penalty := s.defaultPenalty
	if in.Penalty != nil {
		penalty = *in.Penalty
	}
	frequency := in.RecurringFrequency
	if !in.IsRecurring {
		frequency = ""
	}

	task := &models.Task{
		FamilyID:           actor.FamilyID,
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		RewardPoints:       in.RewardPoints,
		RewardMoney:        in.RewardMoney,
		AssignedToID:       in.AssignedToID,
		Date:               in.Date,
		Status:             models.TaskTodo,
		CreatedBy:          models.RoleParent,
		IsRecurring:        in.IsRecurring,
		RecurringFrequency: frequency,
		Penalty:            penalty,
	}
	if err := s.tasks.CreateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateExtraTask records work a child did on their own. It starts pending a
// parent rating with no reward.
func (s *TaskService) CreateExtraTask(ctx context.Context, actor models.Actor, title, description, date, proofImage string) (*models.Task, error) {
	if actor.IsParent() {
		return nil, ErrForbidden
	}
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if date == "" {
		date = s.Today()
	}
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}

	task := &models.Task{
		FamilyID:     actor.FamilyID,
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(description),
		AssignedToID: actor.UserID,
		Date:         date,
		Status:       models.TaskPendingApproval,
		CreatedBy:    models.RoleChild,
		Penalty:      s.defaultPenalty,
		ProofImage:   proofImage,
	}
	if err := s.tasks.CreateTask(task); err != nil {
		return nil, err
	}

	s.notifyParents(ctx, actor.FamilyID, "New extra task", fmt.Sprintf("%q is waiting for your rating.", task.Title), task.ID)
	return task, nil
}

// ListTasks returns a child's tasks, or for a parent with childID 0 the whole family's
func (s *TaskService) ListTasks(actor models.Actor, childID int64) ([]models.Task, error) {
	scoped, err := scopeChild(actor, childID)
	if err != nil {
		return nil, err
	}
	if scoped == 0 {
		return s.tasks.ListFamilyTasks(actor.FamilyID)
	}
	return s.tasks.ListChildTasks(scoped)
}

// PendingApproval returns the tasks waiting for a parent decision
func (s *TaskService) PendingApproval(actor models.Actor) ([]models.Task, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	return s.tasks.ListPendingApproval(actor.FamilyID)
}

// Submit hands a task in for approval. Only TODO and REJECTED tasks dated
// today or earlier can be submitted. Earlier feedback is kept until the next rejection.
func (s *TaskService) Submit(ctx context.Context, actor models.Actor, taskID int64, proofImage, today string) (*models.Task, error) {
	task, err := s.getTask(actor, taskID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != task.AssignedToID {
		return nil, ErrForbidden
	}
	if task.Status != models.TaskTodo && task.Status != models.TaskRejected {
		return nil, ErrInvalidTransition
	}
	if task.IsLocked(today) {
		return nil, ErrTaskLocked
	}

	if err := s.tasks.UpdateTaskStatus(task.ID, models.TaskPendingApproval, proofImage, task.Feedback); err != nil {
		return nil, err
	}
	task.Status = models.TaskPendingApproval
	task.ProofImage = proofImage

	s.notifyParents(ctx, actor.FamilyID, "Task submitted", fmt.Sprintf("%q is ready for approval.", task.Title), task.ID)
	return task, nil
}

// Approve accepts a pending task, credits the child and, for a recurring task,
// schedules the next occurrence. rating is required for child-created tasks.
func (s *TaskService) Approve(ctx context.Context, actor models.Actor, taskID int64, rating *Reward, today string) (*ApprovalResult, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}

	var result ApprovalResult
	err := s.db.WithTx(func(tx *database.Tx) error {
		tasks := s.tasks.WithTx(tx)
		users := s.users.WithTx(tx)

		task, err := tasks.GetTask(actor.FamilyID, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}
		if task.Status != models.TaskPendingApproval {
			return ErrInvalidTransition
		}

		credit, stored, err := EffectiveReward(*task, rating, today)
		if err != nil {
			return err
		}
		if err := tasks.ApproveTask(task.ID, stored.Points, stored.Money); err != nil {
			return err
		}
		task.Status = models.TaskApproved
		task.RewardPoints = stored.Points
		task.RewardMoney = stored.Money

		child, err := loadChild(users, actor, task.AssignedToID)
		if err != nil {
			return err
		}
		balances, err := creditTx(users, child, credit.Points, credit.Money)
		if err != nil {
			return err
		}

		result = ApprovalResult{Task: *task, Credited: credit, Balances: balances}

		if task.IsRecurring {
			next, err := NextOccurrence(*task)
			if err != nil {
				return err
			}
			if err := tasks.CreateTask(&next); err != nil {
				return err
			}
			result.Successor = &next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Task %d approved: credited %+v", taskID, result.Credited)
	s.notifyChild(ctx, result.Task.AssignedToID, "Task approved", approvalMessage(result), taskID)
	return &result, nil
}

func approvalMessage(r ApprovalResult) string {
	if r.Credited.Points < 0 {
		return fmt.Sprintf("%q was late: %d points.", r.Task.Title, r.Credited.Points)
	}
	if r.Credited.Money > 0 {
		return fmt.Sprintf("%q earned %d points and %s.", r.Task.Title, r.Credited.Points, FormatMoney(r.Credited.Money))
	}
	return fmt.Sprintf("%q earned %d points.", r.Task.Title, r.Credited.Points)
}

// Reject sends a pending task back to the child with feedback
func (s *TaskService) Reject(ctx context.Context, actor models.Actor, taskID int64, feedback string) (*models.Task, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	task, err := s.getTask(actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskPendingApproval {
		return nil, ErrInvalidTransition
	}

	feedback = strings.TrimSpace(feedback)
	if err := s.tasks.UpdateTaskStatus(task.ID, models.TaskRejected, task.ProofImage, feedback); err != nil {
		return nil, err
	}
	task.Status = models.TaskRejected
	task.Feedback = feedback

	s.notifyChild(ctx, task.AssignedToID, "Task sent back", fmt.Sprintf("%q needs another try.", task.Title), task.ID)
	return task, nil
}

// Update edits a task that has not been approved yet. Status is not editable.
func (s *TaskService) Update(actor models.Actor, taskID int64, in TaskInput) (*models.Task, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}
	task, err := s.getTask(actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskApproved {
		return nil, ErrInvalidTransition
	}
	if in.AssignedToID != task.AssignedToID {
		if _, err := loadChild(s.users, actor, in.AssignedToID); err != nil {
			return nil, err
		}
	}

	task.Title = strings.TrimSpace(in.Title)
	task.Description = strings.TrimSpace(in.Description)
	task.RewardPoints = in.RewardPoints
	task.RewardMoney = in.RewardMoney
	task.AssignedToID = in.AssignedToID
	task.Date = in.Date
	task.IsRecurring = in.IsRecurring
	task.RecurringFrequency = in.RecurringFrequency
	if !in.IsRecurring {
		task.RecurringFrequency = ""
	}
	if in.Penalty != nil {
		task.Penalty = *in.Penalty
	}

	if err := s.tasks.UpdateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task. Parents may delete any task; a child only its own
// child-created task that has not been approved.
func (s *TaskService) Delete(actor models.Actor, taskID int64) error {
	task, err := s.getTask(actor, taskID)
	if err != nil {
		return err
	}
	if !actor.IsParent() {
		if !task.IsChildCreated() || task.AssignedToID != actor.UserID {
			return ErrForbidden
		}
		if task.Status == models.TaskApproved {
			return ErrInvalidTransition
		}
	}
	return s.tasks.DeleteTask(task.ID)
}

func (s *TaskService) notifyParents(ctx context.Context, familyID int64, title, body string, taskID int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyParents(ctx, familyID, Notification{
		Title: title,
		Body:  body,
		Tag:   fmt.Sprintf("task-%d", taskID),
		Data:  map[string]any{"taskId": taskID},
	})
}

func (s *TaskService) notifyChild(ctx context.Context, childID int64, title, body string, taskID int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(ctx, childID, Notification{
		Title: title,
		Body:  body,
		Tag:   fmt.Sprintf("task-%d", taskID),
		Data:  map[string]any{"taskId": taskID},
	})
}
