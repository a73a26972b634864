package allowance

import (
	"testing"
	"time"

	"chorequest/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextPaymentDateMonthly(t *testing.T) {
	tests := []struct {
		name string
		day  int
		now  time.Time
		want time.Time
	}{
		{name: "anchor later this month", day: 15, now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), want: day(2024, 3, 15)},
		{name: "anchor is today rolls over", day: 15, now: day(2024, 3, 15), want: day(2024, 4, 15)},
		{name: "anchor passed", day: 1, now: time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC), want: day(2024, 4, 1)},
		{name: "december rolls into january", day: 5, now: day(2024, 12, 6), want: day(2025, 1, 5)},
		{name: "short month spills over", day: 31, now: day(2024, 2, 10), want: day(2024, 3, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.AllowanceSettings{Frequency: models.AllowanceMonthly, Day: tt.day}
			got := NextPaymentDate(s, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextPaymentDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextPaymentDateWeekly(t *testing.T) {
	// 2024-01-10 is a Wednesday
	wednesday := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		day  int
		want time.Time
	}{
		{name: "friday later this week", day: 5, want: day(2024, 1, 12)},
		{name: "sunday this week", day: 7, want: day(2024, 1, 14)},
		{name: "wednesday is today rolls a week", day: 3, want: day(2024, 1, 17)},
		{name: "monday already passed", day: 1, want: day(2024, 1, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.AllowanceSettings{Frequency: models.AllowanceWeekly, Day: tt.day}
			got := NextPaymentDate(s, wednesday)
			if !got.Equal(tt.want) {
				t.Errorf("NextPaymentDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodStart(t *testing.T) {
	monthly := models.AllowanceSettings{Frequency: models.AllowanceMonthly, Day: 15}
	if got := PeriodStart(monthly, day(2024, 4, 15)); !got.Equal(day(2024, 3, 15)) {
		t.Errorf("monthly PeriodStart() = %v", got)
	}
	weekly := models.AllowanceSettings{Frequency: models.AllowanceWeekly, Day: 5}
	if got := PeriodStart(weekly, day(2024, 1, 12)); !got.Equal(day(2024, 1, 5)) {
		t.Errorf("weekly PeriodStart() = %v", got)
	}
}

func TestProjectRollingWindow(t *testing.T) {
	settings := &models.AllowanceSettings{
		Amount:         200,
		Frequency:      models.AllowanceMonthly,
		Day:            15,
		PointThreshold: 100,
	}
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	// period runs from 2024-03-15 to 2024-04-15
	tasks := []models.Task{
		{AssignedToID: 1, Status: models.TaskApproved, RewardPoints: 40, Date: "2024-03-15"},
		{AssignedToID: 1, Status: models.TaskApproved, RewardPoints: 40, Date: "2024-03-18"},
		{AssignedToID: 1, Status: models.TaskApproved, RewardPoints: 40, Date: "2024-03-20"},
		{AssignedToID: 1, Status: models.TaskApproved, RewardPoints: 40, Date: "2024-03-14"},
		{AssignedToID: 1, Status: models.TaskPendingApproval, RewardPoints: 40, Date: "2024-03-19"},
		{AssignedToID: 2, Status: models.TaskApproved, RewardPoints: 40, Date: "2024-03-19"},
	}

	p := Project(settings, tasks, 1, now)
	if p == nil {
		t.Fatal("Project() returned nil")
	}
	if p.EarnedPoints != 120 {
		t.Errorf("EarnedPoints = %d, want 120", p.EarnedPoints)
	}
	if p.Percentage != 1 {
		t.Errorf("Percentage = %v, want 1", p.Percentage)
	}
	if p.ProjectedAmount != 200 {
		t.Errorf("ProjectedAmount = %d, want 200", p.ProjectedAmount)
	}
	if !p.NextDate.Equal(day(2024, 4, 15)) {
		t.Errorf("NextDate = %v", p.NextDate)
	}
	if p.DaysLeft != 26 {
		t.Errorf("DaysLeft = %d, want 26", p.DaysLeft)
	}
}

func TestProjectProrates(t *testing.T) {
	settings := &models.AllowanceSettings{
		Amount:         150,
		Frequency:      models.AllowanceWeekly,
		Day:            7,
		PointThreshold: 100,
	}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{AssignedToID: 1, Status: models.TaskApproved, RewardPoints: 33, Date: "2024-01-08"},
		// future-dated approved tasks still count
		{AssignedToID: 1, Status: models.TaskApproved, RewardPoints: 10, Date: "2024-01-20"},
	}

	p := Project(settings, tasks, 1, now)
	if p.EarnedPoints != 43 {
		t.Errorf("EarnedPoints = %d, want 43", p.EarnedPoints)
	}
	if p.ProjectedAmount != 64 {
		t.Errorf("ProjectedAmount = %d, want 64", p.ProjectedAmount)
	}
	if p.DaysLeft != 4 {
		t.Errorf("DaysLeft = %d, want 4", p.DaysLeft)
	}
}

func TestProjectZeroThresholdPaysInFull(t *testing.T) {
	settings := &models.AllowanceSettings{Amount: 50, Frequency: models.AllowanceMonthly, Day: 1}
	p := Project(settings, nil, 1, day(2024, 5, 5))
	if p.Percentage != 1 || p.ProjectedAmount != 50 {
		t.Errorf("Project() = %+v, want full amount", p)
	}
}

func TestProjectWithoutSettings(t *testing.T) {
	if p := Project(nil, nil, 1, time.Now()); p != nil {
		t.Errorf("Project(nil) = %+v, want nil", p)
	}
}

func TestLastPaymentDate(t *testing.T) {
	tests := []struct {
		name      string
		frequency models.AllowanceFrequency
		day       int
		now       time.Time
		want      time.Time
	}{
		{name: "monthly anchor is today", frequency: models.AllowanceMonthly, day: 15, now: time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC), want: day(2026, 3, 15)},
		{name: "monthly anchor not reached", frequency: models.AllowanceMonthly, day: 15, now: day(2026, 3, 14), want: day(2026, 2, 15)},
		{name: "day 31 in february clamps", frequency: models.AllowanceMonthly, day: 31, now: day(2026, 2, 28), want: day(2026, 2, 28)},
		{name: "day 31 early march", frequency: models.AllowanceMonthly, day: 31, now: day(2026, 3, 3), want: day(2026, 2, 28)},
		{name: "day 31 in april clamps", frequency: models.AllowanceMonthly, day: 31, now: day(2026, 5, 1), want: day(2026, 4, 30)},
		{name: "day 30 leap february", frequency: models.AllowanceMonthly, day: 30, now: day(2024, 3, 1), want: day(2024, 2, 29)},
		{name: "january reaches back to december", frequency: models.AllowanceMonthly, day: 20, now: day(2026, 1, 5), want: day(2025, 12, 20)},
		// 2026-03-11 is a Wednesday
		{name: "weekly monday", frequency: models.AllowanceWeekly, day: 1, now: day(2026, 3, 11), want: day(2026, 3, 9)},
		{name: "weekly anchor is today", frequency: models.AllowanceWeekly, day: 3, now: day(2026, 3, 11), want: day(2026, 3, 11)},
		{name: "weekly sunday", frequency: models.AllowanceWeekly, day: 7, now: day(2026, 3, 11), want: day(2026, 3, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.AllowanceSettings{Frequency: tt.frequency, Day: tt.day}
			if got := LastPaymentDate(s, tt.now); !got.Equal(tt.want) {
				t.Errorf("LastPaymentDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettleCountsOnlyThePeriod(t *testing.T) {
	s := models.AllowanceSettings{Amount: 1000, Frequency: models.AllowanceMonthly, Day: 31, PointThreshold: 10}
	tasks := []models.Task{
		{AssignedToID: 1, Status: models.TaskApproved, Date: "2026-01-30", RewardPoints: 100}, // previous period
		{AssignedToID: 1, Status: models.TaskApproved, Date: "2026-01-31", RewardPoints: 3},
		{AssignedToID: 1, Status: models.TaskApproved, Date: "2026-02-27", RewardPoints: 2},
		{AssignedToID: 1, Status: models.TaskApproved, Date: "2026-02-28", RewardPoints: 100}, // next period
		{AssignedToID: 1, Status: models.TaskPendingApproval, Date: "2026-02-10", RewardPoints: 100},
		{AssignedToID: 2, Status: models.TaskApproved, Date: "2026-02-10", RewardPoints: 100},
	}

	p := Settle(s, tasks, 1, day(2026, 2, 28))
	if !p.PeriodStart.Equal(day(2026, 1, 31)) {
		t.Errorf("PeriodStart = %v, want 2026-01-31", p.PeriodStart)
	}
	if p.EarnedPoints != 5 || p.ProjectedAmount != 500 {
		t.Errorf("Settle() earned %d amount %d, want 5 and 500", p.EarnedPoints, p.ProjectedAmount)
	}
}
