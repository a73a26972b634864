package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/ledger"
	"chorequest/internal/models"
	"chorequest/internal/repository"
)

// LedgerService owns every change to a child's points and money
type LedgerService struct {
	db       *database.DB
	users    *repository.UserRepository
	families *repository.FamilyRepository
	goals    *repository.GoalRepository
	step     int64
	mailer   Mailer
	notifier Notifier
	now      func() time.Time
}

// NewLedgerService creates a ledger service. pointsPerUnit is the exchange step.
func NewLedgerService(db *database.DB, pointsPerUnit int64, mailer Mailer, notifier Notifier) *LedgerService {
	return &LedgerService{
		db:       db,
		users:    repository.NewUserRepository(db),
		families: repository.NewFamilyRepository(db),
		goals:    repository.NewGoalRepository(db),
		step:     pointsPerUnit,
		mailer:   mailer,
		notifier: notifier,
		now:      time.Now,
	}
}

// creditTx applies a credit to a loaded child through a transaction-bound repository
func creditTx(users *repository.UserRepository, child *models.User, points, money int64) (ledger.Balances, error) {
	next := ledger.Credit(ledger.Balances{Points: child.Points, Money: child.Balance}, points, money)
	if err := users.UpdateBalances(child.ID, next.Points, next.Money); err != nil {
		return ledger.Balances{}, err
	}
	child.Points = next.Points
	child.Balance = next.Money
	return next, nil
}

// CreditChild adds points and money to a child. Negative deltas are allowed and
// the balances floor at zero.
func (s *LedgerService) CreditChild(actor models.Actor, childID, points, money int64) (ledger.Balances, error) {
	if err := requireParent(actor); err != nil {
		return ledger.Balances{}, err
	}

	var result ledger.Balances
	err := s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		child, err := loadChild(users, actor, childID)
		if err != nil {
			return err
		}
		result, err = creditTx(users, child, points, money)
		return err
	})
	if err != nil {
		return ledger.Balances{}, err
	}
	return result, nil
}

// ConvertPoints exchanges points for money. The amount must be a positive
// multiple of the exchange step and no more than the child holds.
func (s *LedgerService) ConvertPoints(actor models.Actor, childID, amount int64) (ledger.Balances, error) {
	var result ledger.Balances
	err := s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		child, err := loadChild(users, actor, childID)
		if err != nil {
			return err
		}

		result, err = ledger.Convert(ledger.Balances{Points: child.Points, Money: child.Balance}, amount, s.step)
		if err != nil {
			return err
		}
		return users.UpdateBalances(child.ID, result.Points, result.Money)
	})
	if err != nil {
		return ledger.Balances{}, err
	}
	return result, nil
}

// Payout empties a child's balance into a payout record. An empty balance
// returns ErrNoBalance and records nothing, so a repeated request is harmless.
func (s *LedgerService) Payout(ctx context.Context, actor models.Actor, childID int64) (*models.PayoutRecord, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}

	var (
		record *models.PayoutRecord
		child  *models.User
	)
	err := s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		var err error
		child, err = loadChild(users, actor, childID)
		if err != nil {
			return err
		}
		if child.Balance <= 0 {
			return ErrNoBalance
		}

		zeroed, err := users.ZeroBalance(child.ID, child.Balance)
		if err != nil {
			return err
		}
		if !zeroed {
			return ErrNoBalance
		}

		record = &models.PayoutRecord{
			FamilyID: actor.FamilyID,
			ChildID:  child.ID,
			Amount:   child.Balance,
			Date:     s.now(),
		}
		return s.goals.WithTx(tx).CreatePayout(record)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Payout recorded: family=%d child=%d amount=%d", actor.FamilyID, child.ID, record.Amount)
	s.afterPayout(ctx, child, record)
	return record, nil
}

func (s *LedgerService) afterPayout(ctx context.Context, child *models.User, record *models.PayoutRecord) {
	if s.notifier != nil {
		s.notifier.NotifyUser(ctx, child.ID, Notification{
			Title: "Cash out!",
			Body:  fmt.Sprintf("You were paid %s.", FormatMoney(record.Amount)),
			Tag:   "payout",
		})
	}
	if s.mailer == nil {
		return
	}
	family, err := s.families.GetFamilyByID(child.FamilyID)
	if err != nil || family == nil {
		log.Printf("Warning: payout receipt skipped, family %d not loaded: %v", child.FamilyID, err)
		return
	}
	if err := s.mailer.SendPayoutReceipt(ctx, family.Email, child.Name, record.Amount, record.Date); err != nil {
		log.Printf("Warning: failed to send payout receipt: %v", err)
	}
}

// Payouts lists payout history, newest first
func (s *LedgerService) Payouts(actor models.Actor, childID int64) ([]models.PayoutRecord, error) {
	scoped, err := scopeChild(actor, childID)
	if err != nil {
		return nil, err
	}
	return s.goals.ListPayouts(actor.FamilyID, scoped)
}
