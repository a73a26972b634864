package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chorequest/internal/credentials"
	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/security"
	"chorequest/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidFamilyCode  = errors.New("invalid family code")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidPIN         = errors.New("incorrect PIN")
	ErrNotFamilyMember    = errors.New("profile does not belong to this family")
)

// RegisterInput is a new family account with its first parent profile
type RegisterInput struct {
	FamilyName string `json:"familyName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ParentName string `json:"parentName"`
	PIN        string `json:"pin"`
}

// ProfileSelection is the outcome of choosing who is using the app
type ProfileSelection struct {
	Actor     models.Actor
	Token     string
	ExpiresAt time.Time
}

// AuthService handles family logins and profile selection
type AuthService struct {
	db              *database.DB
	families        *repository.FamilyRepository
	users           *repository.UserRepository
	tokens          *security.ProfileTokens
	mailer          Mailer
	sessionDuration time.Duration
	now             func() time.Time
}

// NewAuthService creates a new auth service. mailer may be nil.
func NewAuthService(db *database.DB, tokens *security.ProfileTokens, sessionDuration time.Duration, mailer Mailer) *AuthService {
	return &AuthService{
		db:              db,
		families:        repository.NewFamilyRepository(db),
		users:           repository.NewUserRepository(db),
		tokens:          tokens,
		mailer:          mailer,
		sessionDuration: sessionDuration,
		now:             time.Now,
	}
}

func (s *AuthService) newFamilyCode(families *repository.FamilyRepository) (string, error) {
	for range 5 {
		code, err := credentials.GenerateFamilyCode()
		if err != nil {
			return "", err
		}
		exists, err := families.FamilyCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate a unique family code")
}

func hashPIN(pin string) (string, error) {
	if pin == "" {
		return "", nil
	}
	if err := validation.ValidatePIN(pin); err != nil {
		return "", err
	}
	return security.HashPassword(pin)
}

// createFamily inserts a family with its first parent profile
func (s *AuthService) createFamily(tx *database.Tx, name, email, passwordHash, parentName, pinHash string) (*models.Family, error) {
	families := s.families.WithTx(tx)
	code, err := s.newFamilyCode(families)
	if err != nil {
		return nil, err
	}
	family, err := families.CreateFamily(name, email, passwordHash, code)
	if err != nil {
		return nil, err
	}
	parent := &models.User{
		FamilyID: family.ID,
		Name:     parentName,
		Role:     models.RoleParent,
		PinHash:  pinHash,
	}
	if err := s.users.WithTx(tx).CreateUser(parent); err != nil {
		return nil, err
	}
	return family, nil
}

func (s *AuthService) createSession(familyID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := s.now().Add(s.sessionDuration)
	session, err := s.families.CreateSession(sessionID, familyID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// RegisterFamily creates a family account, its first parent profile and a session
func (s *AuthService) RegisterFamily(ctx context.Context, in RegisterInput) (*models.Session, *models.Family, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FamilyName = strings.TrimSpace(in.FamilyName)
	in.ParentName = strings.TrimSpace(in.ParentName)

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateName(in.FamilyName); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateName(in.ParentName); err != nil {
		return nil, nil, err
	}
	pinHash, err := hashPIN(in.PIN)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.families.GetFamilyByEmail(in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing family: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var family *models.Family
	err = s.db.WithTx(func(tx *database.Tx) error {
		family, err = s.createFamily(tx, in.FamilyName, in.Email, passwordHash, in.ParentName, pinHash)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	session, err := s.createSession(family.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(ctx, family.Email, family.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to family %d: %v", family.ID, err)
		}
	}
	return session, family, nil
}

// Login authenticates a family and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.Family, error) {
	family, err := s.families.GetFamilyByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil || !security.CheckPassword(password, family.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(family.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, family, nil
}

// JoinFamily lets another parent sign in with the family code and password,
// adding their own parent profile
func (s *AuthService) JoinFamily(code, password, parentName, pin string) (*models.Session, *models.Family, error) {
	parentName = strings.TrimSpace(parentName)
	if err := validation.ValidateName(parentName); err != nil {
		return nil, nil, err
	}
	pinHash, err := hashPIN(pin)
	if err != nil {
		return nil, nil, err
	}

	family, err := s.families.GetFamilyByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check family code: %w", err)
	}
	if family == nil {
		return nil, nil, ErrInvalidFamilyCode
	}
	if !security.CheckPassword(password, family.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	parent := &models.User{
		FamilyID: family.ID,
		Name:     parentName,
		Role:     models.RoleParent,
		PinHash:  pinHash,
	}
	if err := s.users.CreateUser(parent); err != nil {
		return nil, nil, err
	}

	session, err := s.createSession(family.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, family, nil
}

// OAuthLogin signs a family in with an external identity. An unknown identity
// is linked to the family with the same email, or gets a new family.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.Session, *models.Family, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	family, err := s.families.GetFamilyByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth family: %w", err)
	}

	if family == nil {
		existing, err := s.families.GetFamilyByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing family: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.families.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, nil, err
			}
			family = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			err = s.db.WithTx(func(tx *database.Tx) error {
				family, err = s.createFamily(tx, name+"'s Family", email, randomPasswordHash, name, "")
				if err != nil {
					return err
				}
				return s.families.WithTx(tx).LinkOAuthProvider(family.ID, provider, subject)
			})
			if err != nil {
				return nil, nil, err
			}
			if s.mailer != nil {
				if err := s.mailer.SendWelcomeEmail(ctx, family.Email, family.Name); err != nil {
					log.Printf("Warning: failed to send welcome email to family %d: %v", family.ID, err)
				}
			}
		}
	}

	session, err := s.createSession(family.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, family, nil
}

// ValidateSession checks if a session is valid and returns its family
func (s *AuthService) ValidateSession(sessionID string) (*models.Family, error) {
	session, err := s.families.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		_ = s.families.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	family, err := s.families.GetFamilyByID(session.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrSessionNotFound
	}
	return family, nil
}

// SelectProfile switches the session to one profile, checking its PIN if set
func (s *AuthService) SelectProfile(sessionID string, familyID, userID int64, pin string) (*ProfileSelection, error) {
	user, err := s.users.GetFamilyUser(familyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}
	if user.HasPIN() && !security.CheckPassword(pin, user.PinHash) {
		return nil, ErrInvalidPIN
	}

	actor := models.Actor{FamilyID: familyID, UserID: user.ID, Role: user.Role}
	token, expires, err := s.tokens.Issue(actor, sessionID, s.now())
	if err != nil {
		return nil, err
	}
	return &ProfileSelection{Actor: actor, Token: token, ExpiresAt: expires}, nil
}

// ResolveActor turns a profile token into the acting profile. The profile must
// still exist with the same role.
func (s *AuthService) ResolveActor(sessionID string, familyID int64, token string) (models.Actor, error) {
	actor, err := s.tokens.Parse(token, sessionID)
	if err != nil {
		return models.Actor{}, err
	}
	if actor.FamilyID != familyID {
		return models.Actor{}, ErrNotFamilyMember
	}

	user, err := s.users.GetFamilyUser(familyID, actor.UserID)
	if err != nil {
		return models.Actor{}, err
	}
	if user == nil || user.Role != actor.Role {
		return models.Actor{}, ErrProfileNotFound
	}
	return actor, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.families.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.families.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}
