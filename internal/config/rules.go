package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"chorequest/internal/ledger"
	"chorequest/internal/models"
	"chorequest/internal/pet"
	"chorequest/internal/quiz"
)

// Rules is the game economy. It is read from a yaml file so a family can tune
// costs and rewards without a rebuild.
type Rules struct {
	PointsPerCurrencyUnit int64      `yaml:"points_per_currency_unit"`
	DefaultPenalty        int64      `yaml:"default_penalty"`
	Pet                   pet.Rules  `yaml:"pet"`
	Quiz                  quiz.Rules `yaml:"quiz"`
}

// DefaultRules returns the built-in economy
func DefaultRules() Rules {
	return Rules{
		PointsPerCurrencyUnit: ledger.PointsPerUnit,
		DefaultPenalty:        models.DefaultPenalty,
		Pet:                   pet.DefaultRules(),
		Quiz:                  quiz.DefaultRules(),
	}
}

// LoadRules overlays the yaml file at path onto the defaults.
// An empty path or a missing file yields the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return rules, nil
	}
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return DefaultRules(), fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return DefaultRules(), err
	}
	return rules, nil
}

// Validate rejects settings that would break the economy
func (r Rules) Validate() error {
	if r.PointsPerCurrencyUnit <= 0 {
		return fmt.Errorf("points_per_currency_unit must be positive")
	}
	if r.DefaultPenalty < 0 {
		return fmt.Errorf("default_penalty must not be negative")
	}
	if r.Pet.FeedCost < 0 || r.Pet.PlayCost < 0 || r.Pet.DecayPerHour < 0 {
		return fmt.Errorf("pet costs and decay must not be negative")
	}
	if r.Quiz.QuestionTime <= 0 {
		return fmt.Errorf("quiz question_time must be positive")
	}
	if r.Quiz.MinDifficulty < 1 || r.Quiz.MaxDifficulty < r.Quiz.MinDifficulty {
		return fmt.Errorf("quiz difficulty bounds are invalid")
	}
	return nil
}
