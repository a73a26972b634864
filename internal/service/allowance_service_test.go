package service

import (
	"context"
	"testing"
	"time"

	"chorequest/internal/models"
	"chorequest/internal/repository"
)

func approvedTask(t *testing.T, svc *AllowanceService, f testFamily, date string, points int64) {
	t.Helper()
	task := &models.Task{
		FamilyID:     f.family.ID,
		Title:        "Chore " + date,
		RewardPoints: points,
		AssignedToID: f.child.UserID,
		Date:         date,
		Status:       models.TaskApproved,
		CreatedBy:    models.RoleParent,
		Penalty:      5,
	}
	if err := repository.NewTaskRepository(svc.db).CreateTask(task); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
}

func TestAllowanceService_Projection(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewAllowanceService(db, nil)
	svc.now = fixedClock(time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))

	none, err := svc.Projection(f.parent, f.child.UserID)
	if err != nil || none != nil {
		t.Fatalf("Projection() without settings = %v, %v", none, err)
	}

	settings := &models.AllowanceSettings{Amount: 1000, Frequency: models.AllowanceWeekly, Day: 1, PointThreshold: 20}
	if _, err := svc.UpdateSettings(f.parent, f.child.UserID, settings); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}

	approvedTask(t, svc, f, "2026-03-08", 50) // before the period
	approvedTask(t, svc, f, "2026-03-09", 5)
	approvedTask(t, svc, f, "2026-03-11", 10)

	p, err := svc.Projection(f.child, f.child.UserID)
	if err != nil || p == nil {
		t.Fatalf("Projection() = %v, %v", p, err)
	}
	if p.EarnedPoints != 15 || p.ProjectedAmount != 750 {
		t.Errorf("Projection() earned %d projected %d, want 15 and 750", p.EarnedPoints, p.ProjectedAmount)
	}
	if got := models.FormatDate(p.NextDate); got != "2026-03-16" {
		t.Errorf("NextDate = %s, want 2026-03-16", got)
	}
}

func TestAllowanceService_UpdateSettingsValidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewAllowanceService(db, nil)

	tests := []struct {
		name     string
		actor    models.Actor
		settings *models.AllowanceSettings
	}{
		{name: "child", actor: f.child, settings: &models.AllowanceSettings{Amount: 1, Frequency: models.AllowanceWeekly, Day: 1}},
		{name: "weekly day out of range", actor: f.parent, settings: &models.AllowanceSettings{Amount: 1, Frequency: models.AllowanceWeekly, Day: 8}},
		{name: "monthly day out of range", actor: f.parent, settings: &models.AllowanceSettings{Amount: 1, Frequency: models.AllowanceMonthly, Day: 32}},
		{name: "negative amount", actor: f.parent, settings: &models.AllowanceSettings{Amount: -1, Frequency: models.AllowanceMonthly, Day: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpdateSettings(tt.actor, f.child.UserID, tt.settings); err == nil {
				t.Error("expected an error")
			}
		})
	}

	child, err := svc.UpdateSettings(f.parent, f.child.UserID, nil)
	if err != nil || child.Allowance != nil {
		t.Errorf("clearing settings = %v, %v", child, err)
	}
}

func TestAllowanceService_ProcessDuePayouts(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	notifier := &fakeNotifier{}
	svc := NewAllowanceService(db, notifier)
	ctx := context.Background()

	settings := &models.AllowanceSettings{Amount: 1000, Frequency: models.AllowanceWeekly, Day: 1, PointThreshold: 20}
	if _, err := svc.UpdateSettings(f.parent, f.child.UserID, settings); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}

	// Wednesday: the first run only marks Monday's payday
	svc.now = fixedClock(time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))
	paid, err := svc.ProcessDuePayouts(ctx)
	if err != nil || paid != 0 {
		t.Fatalf("first ProcessDuePayouts() = %d, %v, want 0", paid, err)
	}
	child := getUser(t, db, f.child.UserID)
	if child.AllowancePaidThrough == nil || models.FormatDate(*child.AllowancePaidThrough) != "2026-03-09" {
		t.Fatalf("paid through = %v, want 2026-03-09", child.AllowancePaidThrough)
	}

	approvedTask(t, svc, f, "2026-03-10", 10)

	// Same week: nothing due
	svc.now = fixedClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	if paid, err := svc.ProcessDuePayouts(ctx); err != nil || paid != 0 {
		t.Fatalf("mid-week ProcessDuePayouts() = %d, %v, want 0", paid, err)
	}

	// Tuesday after payday: the week of 9 March is settled at half the allowance
	svc.now = fixedClock(time.Date(2026, 3, 17, 8, 0, 0, 0, time.UTC))
	paid, err = svc.ProcessDuePayouts(ctx)
	if err != nil || paid != 1 {
		t.Fatalf("ProcessDuePayouts() = %d, %v, want 1", paid, err)
	}
	child = getUser(t, db, f.child.UserID)
	if child.Balance != 500 {
		t.Errorf("balance = %d, want 500", child.Balance)
	}
	if models.FormatDate(*child.AllowancePaidThrough) != "2026-03-16" {
		t.Errorf("paid through = %v, want 2026-03-16", child.AllowancePaidThrough)
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}

	// Running again pays nothing twice
	if paid, err := svc.ProcessDuePayouts(ctx); err != nil || paid != 0 {
		t.Errorf("repeat ProcessDuePayouts() = %d, %v, want 0", paid, err)
	}
	if got := getUser(t, db, f.child.UserID).Balance; got != 500 {
		t.Errorf("balance after repeat = %d, want 500", got)
	}
}

func TestAllowanceService_MonthEndAnchorPaysEveryMonth(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewAllowanceService(db, nil)
	ctx := context.Background()

	settings := &models.AllowanceSettings{Amount: 1000, Frequency: models.AllowanceMonthly, Day: 31, PointThreshold: 10}
	if _, err := svc.UpdateSettings(f.parent, f.child.UserID, settings); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}

	// One 1-point chore a day, with the worker running every day
	var paydays []string
	for d := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC); d.Before(time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)); d = d.AddDate(0, 0, 1) {
		svc.now = fixedClock(d)
		paid, err := svc.ProcessDuePayouts(ctx)
		if err != nil {
			t.Fatalf("ProcessDuePayouts(%s) error: %v", models.FormatDate(d), err)
		}
		if paid > 0 {
			paydays = append(paydays, models.FormatDate(d))
		}
		approvedTask(t, svc, f, models.FormatDate(d), 1)
	}

	want := []string{"2026-01-31", "2026-02-28", "2026-03-31", "2026-04-30", "2026-05-31"}
	if len(paydays) != len(want) {
		t.Fatalf("paid on %v, want %v", paydays, want)
	}
	for i := range want {
		if paydays[i] != want[i] {
			t.Errorf("payday %d = %s, want %s", i, paydays[i], want[i])
		}
	}
	if got := getUser(t, db, f.child.UserID).Balance; got != 5000 {
		t.Errorf("balance = %d, want 5000", got)
	}
}
