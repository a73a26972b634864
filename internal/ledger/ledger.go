// Package ledger holds the balance arithmetic for points and money.
// Callers load the current balances, apply one of these functions and write
// the result back as a single update.
package ledger

import "errors"

// PointsPerUnit is the fixed exchange step: this many points buy one currency unit
const PointsPerUnit = 10

var ErrInsufficientPoints = errors.New("insufficient points")

// Balances are a child's two reward currencies. Money is in minor units.
type Balances struct {
	Points int64 `json:"points"`
	Money  int64 `json:"balance"`
}

// Credit adds the deltas and floors both balances at zero
func Credit(b Balances, points, money int64) Balances {
	return Balances{
		Points: max(0, b.Points+points),
		Money:  max(0, b.Money+money),
	}
}

// Convert exchanges points for money at step points per unit.
// The amount must be a positive multiple of step and no larger than the points held.
func Convert(b Balances, amount, step int64) (Balances, error) {
	if step <= 0 {
		step = PointsPerUnit
	}
	if amount <= 0 || amount%step != 0 || amount > b.Points {
		return b, ErrInsufficientPoints
	}
	return Balances{
		Points: b.Points - amount,
		Money:  b.Money + amount/step,
	}, nil
}
