package service

import (
	"context"
	"errors"
	"testing"
)

func TestLedgerService_CreditChild(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewLedgerService(db, 10, nil, nil)

	got, err := svc.CreditChild(f.parent, f.child.UserID, 15, 200)
	if err != nil {
		t.Fatalf("CreditChild() error: %v", err)
	}
	if got.Points != 15 || got.Money != 200 {
		t.Errorf("CreditChild() = %+v, want 15 points and 200 money", got)
	}

	got, err = svc.CreditChild(f.parent, f.child.UserID, -40, -50)
	if err != nil {
		t.Fatalf("CreditChild(negative) error: %v", err)
	}
	if got.Points != 0 || got.Money != 150 {
		t.Errorf("CreditChild(negative) = %+v, want points floored at 0 and money 150", got)
	}

	stored := getUser(t, db, f.child.UserID)
	if stored.Points != 0 || stored.Balance != 150 {
		t.Errorf("stored balances = %d/%d, want 0/150", stored.Points, stored.Balance)
	}

	if _, err := svc.CreditChild(f.child, f.child.UserID, 100, 0); !errors.Is(err, ErrForbidden) {
		t.Errorf("child crediting itself: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.CreditChild(f.parent, f.parent.UserID, 1, 0); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("crediting a parent: err = %v, want ErrChildNotFound", err)
	}
}

func TestLedgerService_ConvertPoints(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewLedgerService(db, 10, nil, nil)
	setBalances(t, db, f.child.UserID, 25, 0)

	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{name: "not a multiple of the step", amount: 15, wantErr: ErrInsufficientPoints},
		{name: "more than held", amount: 30, wantErr: ErrInsufficientPoints},
		{name: "zero", amount: 0, wantErr: ErrInsufficientPoints},
		{name: "valid", amount: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ConvertPoints(f.child, f.child.UserID, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ConvertPoints(%d) err = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}

	stored := getUser(t, db, f.child.UserID)
	if stored.Points != 5 || stored.Balance != 2 {
		t.Errorf("after conversion = %d points, %d money, want 5 and 2", stored.Points, stored.Balance)
	}

	if _, err := svc.ConvertPoints(f.sibling, f.child.UserID, 10); !errors.Is(err, ErrForbidden) {
		t.Errorf("sibling converting: err = %v, want ErrForbidden", err)
	}
}

func TestLedgerService_Payout(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	mailer := &fakeMailer{}
	notifier := &fakeNotifier{}
	svc := NewLedgerService(db, 10, mailer, notifier)
	setBalances(t, db, f.child.UserID, 7, 1250)
	ctx := context.Background()

	record, err := svc.Payout(ctx, f.parent, f.child.UserID)
	if err != nil {
		t.Fatalf("Payout() error: %v", err)
	}
	if record.Amount != 1250 || record.ChildID != f.child.UserID || record.ID == 0 {
		t.Errorf("unexpected payout record: %+v", record)
	}

	stored := getUser(t, db, f.child.UserID)
	if stored.Balance != 0 || stored.Points != 7 {
		t.Errorf("after payout = %d points, %d money, want points untouched and money 0", stored.Points, stored.Balance)
	}

	if _, err := svc.Payout(ctx, f.parent, f.child.UserID); !errors.Is(err, ErrNoBalance) {
		t.Errorf("second Payout() err = %v, want ErrNoBalance", err)
	}

	history, err := svc.Payouts(f.child, 0)
	if err != nil {
		t.Fatalf("Payouts() error: %v", err)
	}
	if len(history) != 1 || history[0].Amount != 1250 {
		t.Errorf("Payouts() = %+v, want one record of 1250", history)
	}

	if len(mailer.receipts) != 1 || mailer.receipts[0] != "smith@example.com" || mailer.amounts[0] != 1250 {
		t.Errorf("receipts = %v %v", mailer.receipts, mailer.amounts)
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}

	if _, err := svc.Payout(ctx, f.child, f.child.UserID); !errors.Is(err, ErrForbidden) {
		t.Errorf("child payout: err = %v, want ErrForbidden", err)
	}
}
