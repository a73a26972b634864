package service

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/leaderboard"
	"chorequest/internal/models"
	"chorequest/internal/quiz"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// ScoreBoard ranks quiz scores within a family
type ScoreBoard interface {
	Record(ctx context.Context, familyID, childID int64, category models.QuizCategory, score int) error
	Top(ctx context.Context, familyID int64, category models.QuizCategory, limit int64) ([]leaderboard.Entry, error)
}

// AnswerResult is the state of a run after one answer
type AnswerResult struct {
	Correct bool         `json:"correct"`
	TimeUp  bool         `json:"timeUp"`
	Session quiz.Session `json:"session"`
}

// QuizService keeps one live quiz run per child in memory and settles
// finished runs into the database
type QuizService struct {
	db      *database.DB
	users   *repository.UserRepository
	results *repository.GameResultRepository
	board   ScoreBoard
	rules   quiz.Rules
	now     func() time.Time
	newRNG  func() *rand.Rand

	mu       sync.Mutex
	sessions map[int64]*quiz.Session
}

// NewQuizService creates a quiz service. board may be nil.
func NewQuizService(db *database.DB, rules quiz.Rules, board ScoreBoard) *QuizService {
	return &QuizService{
		db:      db,
		users:   repository.NewUserRepository(db),
		results: repository.NewGameResultRepository(db),
		board:   board,
		rules:   rules,
		now:     time.Now,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		sessions: make(map[int64]*quiz.Session),
	}
}

// Start begins a new run for the acting child, replacing any unfinished one
func (s *QuizService) Start(actor models.Actor, category models.QuizCategory) (quiz.Session, error) {
	if actor.IsParent() {
		return quiz.Session{}, ErrForbidden
	}
	if !category.Valid() {
		return quiz.Session{}, validation.ValidationError{Field: "category", Message: "category must be MATH or ENGLISH"}
	}

	session := quiz.NewSession(category, s.rules, s.newRNG(), s.now())

	s.mu.Lock()
	s.sessions[actor.UserID] = session
	s.mu.Unlock()

	return *session, nil
}

// Current returns the acting child's live run
func (s *QuizService) Current(actor models.Actor) (quiz.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[actor.UserID]
	if !ok {
		return quiz.Session{}, ErrNoActiveQuiz
	}
	session.Expire(s.now())
	return *session, nil
}

// Answer grades an answer in the acting child's run. A late answer ends the
// run and reports TimeUp rather than an error.
func (s *QuizService) Answer(actor models.Actor, questionID, answer string) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[actor.UserID]
	if !ok {
		return nil, ErrNoActiveQuiz
	}

	correct, err := session.Answer(questionID, answer, s.now())
	if errors.Is(err, quiz.ErrTimeUp) {
		return &AnswerResult{TimeUp: true, Session: *session}, nil
	}
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Correct: correct, Session: *session}, nil
}

// Finish ends the acting child's run and pays it out: energy for every correct
// answer, a new high score if beaten, and the perfect-run bonus.
func (s *QuizService) Finish(ctx context.Context, actor models.Actor) (*models.GameResult, error) {
	s.mu.Lock()
	session, ok := s.sessions[actor.UserID]
	if ok {
		delete(s.sessions, actor.UserID)
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoActiveQuiz
	}
	session.End()

	var result *models.GameResult
	err := s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		child, err := loadChild(users, actor, actor.UserID)
		if err != nil {
			return err
		}

		outcome := session.Settle(child.HighScore(session.Category))

		if outcome.PointsEarned > 0 {
			if err := users.UpdatePetPoints(child.ID, child.PetPoints+outcome.PointsEarned); err != nil {
				return err
			}
		}
		if outcome.IsNewRecord {
			if err := users.UpdateHighScore(child.ID, session.Category, outcome.Score); err != nil {
				return err
			}
		}
		if outcome.Reward > 0 {
			if _, err := creditTx(users, child, 0, outcome.Reward); err != nil {
				return err
			}
		}

		result = &models.GameResult{
			FamilyID:       actor.FamilyID,
			ChildID:        child.ID,
			Category:       session.Category,
			Score:          outcome.Score,
			CorrectCount:   outcome.Correct,
			IncorrectCount: outcome.Incorrect,
			PointsEarned:   outcome.PointsEarned,
			RewardAmount:   outcome.Reward,
			IsNewRecord:    outcome.IsNewRecord,
			Date:           s.now(),
		}
		return s.results.WithTx(tx).CreateResult(result)
	})
	if err != nil {
		return nil, err
	}

	if s.board != nil {
		if err := s.board.Record(ctx, actor.FamilyID, actor.UserID, result.Category, result.Score); err != nil {
			log.Printf("Warning: failed to update leaderboard: %v", err)
		}
	}
	return result, nil
}

// Results lists finished runs, newest first
func (s *QuizService) Results(actor models.Actor, childID int64, limit int) ([]models.GameResult, error) {
	scoped, err := scopeChild(actor, childID)
	if err != nil {
		return nil, err
	}
	return s.results.ListResults(actor.FamilyID, scoped, limit)
}

// Leaderboard ranks the family's children in a category. Without Redis it is empty.
func (s *QuizService) Leaderboard(ctx context.Context, actor models.Actor, category models.QuizCategory, limit int64) ([]leaderboard.Entry, error) {
	if s.board == nil {
		return []leaderboard.Entry{}, nil
	}
	entries, err := s.board.Top(ctx, actor.FamilyID, category, limit)
	if err != nil {
		log.Printf("Warning: failed to read leaderboard: %v", err)
		return []leaderboard.Entry{}, nil
	}

	children, err := s.users.ListFamilyUsersByRole(actor.FamilyID, models.RoleChild)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(children))
	for _, c := range children {
		names[c.ID] = c.Name
	}
	for i := range entries {
		entries[i].Name = names[entries[i].ChildID]
	}
	return entries, nil
}
