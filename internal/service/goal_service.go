package service

import (
	"strings"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// GoalInput holds the editable fields of a savings goal
type GoalInput struct {
	Title        string `json:"title"`
	TargetAmount int64  `json:"targetAmount"`
	ImageURL     string `json:"imageUrl"`
}

func (in GoalInput) validate() error {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if in.TargetAmount <= 0 {
		return validation.ValidationError{Field: "targetAmount", Message: "target must be greater than zero"}
	}
	return nil
}

// Progress measures a goal against a balance. A goal counts as reached once
// the balance covers the target; percent is capped at 100.
func Progress(goal models.Goal, balance int64) models.GoalProgress {
	p := models.GoalProgress{Goal: goal, Balance: balance}
	if goal.TargetAmount <= 0 {
		p.Reached = true
		p.Percent = 100
		return p
	}
	p.Remaining = max(goal.TargetAmount-balance, 0)
	p.Reached = p.Remaining == 0
	p.Percent = min(float64(max(balance, 0))*100/float64(goal.TargetAmount), 100)
	return p
}

// GoalService manages savings goals
type GoalService struct {
	goals *repository.GoalRepository
	users *repository.UserRepository
}

// NewGoalService creates a new goal service
func NewGoalService(db *database.DB) *GoalService {
	return &GoalService{
		goals: repository.NewGoalRepository(db),
		users: repository.NewUserRepository(db),
	}
}

// Create adds a goal for a child. Children may set goals for themselves.
func (s *GoalService) Create(actor models.Actor, childID int64, in GoalInput) (*models.GoalProgress, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.validate(); err != nil {
		return nil, err
	}
	child, err := loadChild(s.users, actor, childID)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		FamilyID:     actor.FamilyID,
		ChildID:      child.ID,
		Title:        in.Title,
		TargetAmount: in.TargetAmount,
		ImageURL:     in.ImageURL,
	}
	if err := s.goals.CreateGoal(goal); err != nil {
		return nil, err
	}
	p := Progress(*goal, child.Balance)
	return &p, nil
}

// List returns goals with their progress against each child's current balance
func (s *GoalService) List(actor models.Actor, childID int64) ([]models.GoalProgress, error) {
	scoped, err := scopeChild(actor, childID)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ListFamilyGoals(actor.FamilyID, scoped)
	if err != nil {
		return nil, err
	}

	balances := make(map[int64]int64)
	children, err := s.users.ListFamilyUsersByRole(actor.FamilyID, models.RoleChild)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		balances[c.ID] = c.Balance
	}

	progress := make([]models.GoalProgress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, Progress(g, balances[g.ChildID]))
	}
	return progress, nil
}

func (s *GoalService) load(actor models.Actor, goalID int64) (*models.Goal, error) {
	goal, err := s.goals.GetGoal(actor.FamilyID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if !actor.IsParent() && goal.ChildID != actor.UserID {
		return nil, ErrForbidden
	}
	return goal, nil
}

// Update edits a goal's title, target or image
func (s *GoalService) Update(actor models.Actor, goalID int64, in GoalInput) (*models.Goal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.validate(); err != nil {
		return nil, err
	}
	goal, err := s.load(actor, goalID)
	if err != nil {
		return nil, err
	}
	goal.Title = in.Title
	goal.TargetAmount = in.TargetAmount
	goal.ImageURL = in.ImageURL
	if err := s.goals.UpdateGoal(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal
func (s *GoalService) Delete(actor models.Actor, goalID int64) error {
	goal, err := s.load(actor, goalID)
	if err != nil {
		return err
	}
	return s.goals.DeleteGoal(goal.ID)
}
