// Package allowance projects a child's next allowance payment from the points
// earned in the current rolling period.
package allowance

import (
	"math"
	"time"

	"chorequest/internal/models"
)

// Projection is the expected outcome of the current allowance period
type Projection struct {
	TotalAmount     int64     `json:"totalAmount"`
	ProjectedAmount int64     `json:"projectedAmount"`
	EarnedPoints    int64     `json:"earnedPoints"`
	PointThreshold  int64     `json:"pointThreshold"`
	Percentage      float64   `json:"percentage"`
	DaysLeft        int       `json:"daysLeft"`
	NextDate        time.Time `json:"nextDate"`
	PeriodStart     time.Time `json:"periodStart"`
}

// NextPaymentDate returns the next payday strictly after now's calendar day.
// An anchor falling on today always rolls to the following period.
func NextPaymentDate(s models.AllowanceSettings, now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()

	if s.Frequency == models.AllowanceWeekly {
		today := time.Date(y, m, d, 0, 0, 0, 0, loc)
		diff := s.Day%7 - int(now.Weekday())
		if diff <= 0 {
			diff += 7
		}
		return today.AddDate(0, 0, diff)
	}

	// Days past the end of a short month spill into the next one.
	if d >= s.Day {
		return time.Date(y, m+1, s.Day, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m, s.Day, 0, 0, 0, 0, loc)
}

// PeriodStart is exactly one period before the given payday
func PeriodStart(s models.AllowanceSettings, next time.Time) time.Time {
	if s.Frequency == models.AllowanceWeekly {
		return next.AddDate(0, 0, -7)
	}
	return next.AddDate(0, -1, 0)
}

// EarnedPoints sums the reward points of the child's approved tasks dated on or after start.
// An approved task counts its stored RewardPoints even when it was approved
// late and the ledger credited only the penalty.
func EarnedPoints(tasks []models.Task, childID int64, start time.Time) int64 {
	return earnedBetween(tasks, childID, models.FormatDate(start), "")
}

// earnedBetween sums approved points dated in [from, until); an empty until is open-ended
func earnedBetween(tasks []models.Task, childID int64, from, until string) int64 {
	var earned int64
	for _, t := range tasks {
		if t.AssignedToID != childID || t.Status != models.TaskApproved {
			continue
		}
		if t.Date >= from && (until == "" || t.Date < until) {
			earned += t.RewardPoints
		}
	}
	return earned
}

// monthlyPayday is the anchor day in the given month, clamped to its last day
func monthlyPayday(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	return time.Date(year, month, min(day, last), 0, 0, 0, 0, loc)
}

// LastPaymentDate returns the most recent payday on or before now's calendar day.
// Monthly anchors past the end of a short month settle on its last day, so
// every month has exactly one payday.
func LastPaymentDate(s models.AllowanceSettings, now time.Time) time.Time {
	y, m, d := now.Date()
	loc := now.Location()

	if s.Frequency == models.AllowanceWeekly {
		back := int(now.Weekday()) - s.Day%7
		if back < 0 {
			back += 7
		}
		return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -back)
	}

	if payday := monthlyPayday(y, m, s.Day, loc); d >= payday.Day() {
		return payday
	}
	return monthlyPayday(y, m-1, s.Day, loc)
}

// previousPaymentDate is the payday one period before a payday returned by LastPaymentDate
func previousPaymentDate(s models.AllowanceSettings, payday time.Time) time.Time {
	if s.Frequency == models.AllowanceWeekly {
		return payday.AddDate(0, 0, -7)
	}
	return monthlyPayday(payday.Year(), payday.Month()-1, s.Day, payday.Location())
}

// Settle computes the allowance owed for the period ending on payday. Only
// tasks dated from the previous payday up to the day before payday count.
func Settle(s models.AllowanceSettings, tasks []models.Task, childID int64, payday time.Time) *Projection {
	start := previousPaymentDate(s, payday)
	earned := earnedBetween(tasks, childID, models.FormatDate(start), models.FormatDate(payday))
	return &Projection{
		TotalAmount:     s.Amount,
		ProjectedAmount: prorate(s.Amount, earned, s.PointThreshold),
		EarnedPoints:    earned,
		PointThreshold:  s.PointThreshold,
		Percentage:      percentage(earned, s.PointThreshold),
		NextDate:        payday,
		PeriodStart:     start,
	}
}

// Project computes the allowance outlook at now. It returns nil when the
// child has no allowance configured.
func Project(s *models.AllowanceSettings, tasks []models.Task, childID int64, now time.Time) *Projection {
	if s == nil {
		return nil
	}

	next := NextPaymentDate(*s, now)
	start := PeriodStart(*s, next)
	earned := EarnedPoints(tasks, childID, start)

	return &Projection{
		TotalAmount:     s.Amount,
		ProjectedAmount: prorate(s.Amount, earned, s.PointThreshold),
		EarnedPoints:    earned,
		PointThreshold:  s.PointThreshold,
		Percentage:      percentage(earned, s.PointThreshold),
		DaysLeft:        int(math.Ceil(next.Sub(now).Hours() / 24)),
		NextDate:        next,
		PeriodStart:     start,
	}
}

func percentage(earned, threshold int64) float64 {
	if threshold <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, float64(earned)/float64(threshold)))
}

// prorate is floor(amount * min(1, earned/threshold)) in integer arithmetic
func prorate(amount, earned, threshold int64) int64 {
	if threshold <= 0 || earned >= threshold {
		return amount
	}
	if earned <= 0 {
		return 0
	}
	return amount * earned / threshold
}
