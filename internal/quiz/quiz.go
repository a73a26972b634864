// Package quiz scores the tower-climbing quiz: every correct answer adds a
// floor, a wrong one knocks one off, and a question left unanswered past its
// deadline ends the climb.
package quiz

import (
	"errors"
	"math/rand/v2"
	"time"

	"chorequest/internal/models"
)

var (
	ErrSessionOver     = errors.New("quiz session is over")
	ErrTimeUp          = errors.New("time is up")
	ErrUnknownQuestion = errors.New("question is not the current question")
)

// Rules are the tunable quiz parameters
type Rules struct {
	PerfectBonus  int64         `yaml:"perfect_bonus"`
	QuestionTime  time.Duration `yaml:"question_time"`
	MinDifficulty int           `yaml:"min_difficulty"`
	MaxDifficulty int           `yaml:"max_difficulty"`
}

// DefaultRules returns the standard quiz settings
func DefaultRules() Rules {
	return Rules{
		PerfectBonus:  10,
		QuestionTime:  5 * time.Second,
		MinDifficulty: 1,
		MaxDifficulty: 10,
	}
}

// Session is one child's quiz run
type Session struct {
	Category   models.QuizCategory `json:"category"`
	Score      int                 `json:"score"`
	Correct    int                 `json:"correctCount"`
	Incorrect  int                 `json:"incorrectCount"`
	Difficulty int                 `json:"difficulty"`
	Current    Question            `json:"question"`
	Deadline   time.Time           `json:"deadline"`
	Over       bool                `json:"over"`

	rules Rules
	rng   *rand.Rand
}

// NewSession starts a run at the lowest difficulty with its first question
func NewSession(category models.QuizCategory, rules Rules, rng *rand.Rand, now time.Time) *Session {
	s := &Session{
		Category:   category,
		Difficulty: rules.MinDifficulty,
		rules:      rules,
		rng:        rng,
	}
	s.next(now)
	return s
}

// Answer grades an answer to the current question and moves on to the next one.
// An answer arriving after the deadline ends the session with ErrTimeUp.
func (s *Session) Answer(questionID, answer string, now time.Time) (bool, error) {
	if s.Over {
		return false, ErrSessionOver
	}
	if s.Expire(now) {
		return false, ErrTimeUp
	}
	if questionID != s.Current.ID {
		return false, ErrUnknownQuestion
	}

	correct := s.Current.Check(answer)
	if correct {
		s.Score++
		s.Correct++
	} else {
		if s.Score > 0 {
			s.Score--
		}
		s.Incorrect++
	}
	s.Difficulty = AdjustDifficulty(s.Difficulty, correct, s.rules)
	s.next(now)
	return correct, nil
}

// Expire ends the session if the current question's deadline has passed
func (s *Session) Expire(now time.Time) bool {
	if !s.Over && now.After(s.Deadline) {
		s.Over = true
	}
	return s.Over
}

// End stops the session voluntarily
func (s *Session) End() {
	s.Over = true
}

func (s *Session) next(now time.Time) {
	s.Current = Generate(s.Category, s.Difficulty, s.rng)
	s.Deadline = now.Add(s.rules.QuestionTime)
}

// AdjustDifficulty steps difficulty up after a correct answer and down after a
// wrong one, staying inside the configured bounds.
func AdjustDifficulty(current int, correct bool, rules Rules) int {
	if correct {
		current++
	} else {
		current--
	}
	return max(rules.MinDifficulty, min(rules.MaxDifficulty, current))
}

// Outcome is what a finished session pays out
type Outcome struct {
	Score        int   `json:"score"`
	Correct      int   `json:"correctCount"`
	Incorrect    int   `json:"incorrectCount"`
	PointsEarned int64 `json:"pointsEarned"`
	IsNewRecord  bool  `json:"isNewRecord"`
	Reward       int64 `json:"reward"`
}

// Settle computes the payout of a finished run against the prior high score.
// Energy equals the number of correct answers. The money bonus needs a new
// record reached without a single mistake.
func Settle(score, correct, incorrect, priorHigh int, bonus int64) Outcome {
	o := Outcome{
		Score:        score,
		Correct:      correct,
		Incorrect:    incorrect,
		PointsEarned: int64(correct),
		IsNewRecord:  score > priorHigh,
	}
	if o.IsNewRecord && incorrect == 0 && score > 0 {
		o.Reward = bonus
	}
	return o
}

// Settle is the outcome of this session
func (s *Session) Settle(priorHigh int) Outcome {
	return Settle(s.Score, s.Correct, s.Incorrect, priorHigh, s.rules.PerfectBonus)
}
