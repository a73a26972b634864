// Package pet implements the virtual pet state machine: passive decay,
// energy-gated interactions, XP and stage evolution.
package pet

import (
	"errors"
	"time"

	"chorequest/internal/models"
)

var ErrInsufficientEnergy = errors.New("not enough energy")

const (
	MaxStat  = 100
	EvolveAt = 100
)

// Rules are the tunable costs and gains of pet interactions
type Rules struct {
	FeedCost      int64 `yaml:"feed_cost"`
	PlayCost      int64 `yaml:"play_cost"`
	FeedHealth    int   `yaml:"feed_health"`
	FeedXP        int   `yaml:"feed_xp"`
	PlayHappiness int   `yaml:"play_happiness"`
	PlayXP        int   `yaml:"play_xp"`
	DecayPerHour  int   `yaml:"decay_per_hour"`
}

// DefaultRules returns the standard pet economy
func DefaultRules() Rules {
	return Rules{
		FeedCost:      10,
		PlayCost:      5,
		FeedHealth:    20,
		FeedXP:        5,
		PlayHappiness: 20,
		PlayXP:        10,
		DecayPerHour:  5,
	}
}

// Adopt returns a freshly hatched egg
func Adopt(childID int64, name string, petType models.PetType, now time.Time) models.Pet {
	return models.Pet{
		ChildID:         childID,
		Name:            name,
		Type:            petType,
		Stage:           1,
		Health:          MaxStat,
		Happiness:       MaxStat,
		Experience:      0,
		LastInteraction: now,
		CreatedAt:       now,
	}
}

// Decay lowers health and happiness by the whole hours elapsed since the last
// interaction. LastInteraction is left untouched. The bool reports whether
// anything changed.
func Decay(p models.Pet, now time.Time, rules Rules) (models.Pet, bool) {
	hours := int(now.Sub(p.LastInteraction) / time.Hour)
	if hours < 1 {
		return p, false
	}
	loss := hours * rules.DecayPerHour

	health := max(0, p.Health-loss)
	happiness := max(0, p.Happiness-loss)
	if health == p.Health && happiness == p.Happiness {
		return p, false
	}
	p.Health = health
	p.Happiness = happiness
	return p, true
}

// Feed spends energy to restore health. It returns the updated pet and the remaining energy.
func Feed(p models.Pet, energy int64, now time.Time, rules Rules) (models.Pet, int64, error) {
	if energy < rules.FeedCost {
		return p, energy, ErrInsufficientEnergy
	}
	p.Health = min(MaxStat, p.Health+rules.FeedHealth)
	return gainXP(p, rules.FeedXP, now), energy - rules.FeedCost, nil
}

// Play spends energy to raise happiness. It returns the updated pet and the remaining energy.
func Play(p models.Pet, energy int64, now time.Time, rules Rules) (models.Pet, int64, error) {
	if energy < rules.PlayCost {
		return p, energy, ErrInsufficientEnergy
	}
	p.Happiness = min(MaxStat, p.Happiness+rules.PlayHappiness)
	return gainXP(p, rules.PlayXP, now), energy - rules.PlayCost, nil
}

func gainXP(p models.Pet, xp int, now time.Time) models.Pet {
	p.Experience += xp
	p.LastInteraction = now
	if p.Experience >= EvolveAt {
		p.Stage++
		p.Experience = 0
	}
	return p
}
