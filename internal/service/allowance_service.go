package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"chorequest/internal/allowance"
	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// AllowanceService projects and pays periodic allowances
type AllowanceService struct {
	db       *database.DB
	users    *repository.UserRepository
	tasks    *repository.TaskRepository
	notifier Notifier
	now      func() time.Time
}

// NewAllowanceService creates an allowance service
func NewAllowanceService(db *database.DB, notifier Notifier) *AllowanceService {
	return &AllowanceService{
		db:       db,
		users:    repository.NewUserRepository(db),
		tasks:    repository.NewTaskRepository(db),
		notifier: notifier,
		now:      time.Now,
	}
}

// Projection returns the child's allowance outlook, or nil without settings
func (s *AllowanceService) Projection(actor models.Actor, childID int64) (*allowance.Projection, error) {
	child, err := loadChild(s.users, actor, childID)
	if err != nil {
		return nil, err
	}
	if child.Allowance == nil {
		return nil, nil
	}
	tasks, err := s.tasks.ListChildTasks(child.ID)
	if err != nil {
		return nil, err
	}
	return allowance.Project(child.Allowance, tasks, child.ID, s.now()), nil
}

// UpdateSettings stores or, with nil, removes a child's allowance settings
func (s *AllowanceService) UpdateSettings(actor models.Actor, childID int64, settings *models.AllowanceSettings) (*models.User, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateAllowance(settings); err != nil {
		return nil, err
	}
	child, err := loadChild(s.users, actor, childID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAllowance(child.ID, settings); err != nil {
		return nil, err
	}
	child.Allowance = settings
	child.AllowancePaidThrough = nil
	return child, nil
}

// ProcessDuePayouts credits every allowance whose payday has passed since it
// was last settled. The first run after settings change only marks the
// current payday, so nothing is paid retroactively. Missed paydays collapse
// into the most recent one. It returns how many children were paid.
func (s *AllowanceService) ProcessDuePayouts(ctx context.Context) (int, error) {
	now := s.now()
	children, err := s.users.ListChildrenWithAllowance()
	if err != nil {
		return 0, err
	}

	paid := 0
	for _, child := range children {
		amount, err := s.settle(child, now)
		if err != nil {
			log.Printf("Failed to settle allowance for child %d: %v", child.ID, err)
			continue
		}
		if amount <= 0 {
			continue
		}
		paid++
		log.Printf("Allowance paid: family=%d child=%d amount=%d", child.FamilyID, child.ID, amount)
		if s.notifier != nil {
			s.notifier.NotifyUser(ctx, child.ID, Notification{
				Title: "Allowance paid",
				Body:  fmt.Sprintf("%s was added to your balance.", FormatMoney(amount)),
				Tag:   "allowance",
			})
		}
	}
	return paid, nil
}

// settle pays one child's due allowance and returns the amount credited
func (s *AllowanceService) settle(child models.User, now time.Time) (int64, error) {
	settings := *child.Allowance
	payday := allowance.LastPaymentDate(settings, now)

	if child.AllowancePaidThrough == nil {
		return 0, s.users.SetAllowancePaidThrough(child.ID, payday)
	}
	if !child.AllowancePaidThrough.Before(payday) {
		return 0, nil
	}

	tasks, err := s.tasks.ListChildTasks(child.ID)
	if err != nil {
		return 0, err
	}
	projection := allowance.Settle(settings, tasks, child.ID, payday)

	var amount int64
	err = s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		current, err := users.GetUserByID(child.ID)
		if err != nil {
			return err
		}
		if current == nil || current.AllowancePaidThrough == nil || !current.AllowancePaidThrough.Before(payday) {
			return nil
		}
		if projection.ProjectedAmount > 0 {
			if _, err := creditTx(users, current, 0, projection.ProjectedAmount); err != nil {
				return err
			}
			amount = projection.ProjectedAmount
		}
		return users.SetAllowancePaidThrough(child.ID, payday)
	})
	return amount, err
}
