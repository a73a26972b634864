package models

import "time"

// QuizCategory is the subject of a quiz session
type QuizCategory string

const (
	QuizMath    QuizCategory = "MATH"
	QuizEnglish QuizCategory = "ENGLISH"
)

// Valid reports whether c is a known category
func (c QuizCategory) Valid() bool {
	return c == QuizMath || c == QuizEnglish
}

// GameResult records one finished quiz session
type GameResult struct {
	ID             int64        `json:"id"`
	FamilyID       int64        `json:"familyId"`
	ChildID        int64        `json:"childId"`
	Category       QuizCategory `json:"category"`
	Score          int          `json:"score"`
	CorrectCount   int          `json:"correctCount"`
	IncorrectCount int          `json:"incorrectCount"`
	PointsEarned   int64        `json:"pointsEarned"`
	RewardAmount   int64        `json:"rewardAmount"`
	IsNewRecord    bool         `json:"isNewRecord"`
	Date           time.Time    `json:"date"`
}
