package service

import (
	"fmt"
	"strings"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

const defaultAvatarColor = "#4A90E2"

// ProfileInput holds the fields of a new or edited profile
type ProfileInput struct {
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	AvatarColor string      `json:"avatarColor"`
	PIN         string      `json:"pin"`
}

// FamilyService handles the family account and the profiles inside it
type FamilyService struct {
	db       *database.DB
	families *repository.FamilyRepository
	users    *repository.UserRepository
}

// NewFamilyService creates a new family service
func NewFamilyService(db *database.DB) *FamilyService {
	return &FamilyService{
		db:       db,
		families: repository.NewFamilyRepository(db),
		users:    repository.NewUserRepository(db),
	}
}

// GetFamily retrieves a family by ID
func (s *FamilyService) GetFamily(familyID int64) (*models.Family, error) {
	family, err := s.families.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// RenameFamily changes the family's display name
func (s *FamilyService) RenameFamily(actor models.Actor, name string) error {
	if err := requireParent(actor); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	return s.families.UpdateFamilyName(actor.FamilyID, name)
}

// ListProfiles returns every profile in a family, parents first
func (s *FamilyService) ListProfiles(familyID int64) ([]models.User, error) {
	users, err := s.users.ListFamilyUsers(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family profiles: %w", err)
	}
	return users, nil
}

// GetProfile retrieves one profile of the actor's family
func (s *FamilyService) GetProfile(actor models.Actor, userID int64) (*models.User, error) {
	user, err := s.users.GetFamilyUser(actor.FamilyID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}
	return user, nil
}

// CreateProfile adds a parent or child profile to the actor's family
func (s *FamilyService) CreateProfile(actor models.Actor, in ProfileInput) (*models.User, error) {
	if err := requireParent(actor); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, validation.ValidationError{Field: "role", Message: "role must be PARENT or CHILD"}
	}
	if in.AvatarColor == "" {
		in.AvatarColor = defaultAvatarColor
	}
	if err := validation.ValidateColor(in.AvatarColor); err != nil {
		return nil, err
	}
	pinHash, err := hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FamilyID:    actor.FamilyID,
		Name:        in.Name,
		Role:        in.Role,
		AvatarColor: in.AvatarColor,
		PinHash:     pinHash,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile renames a profile or changes its avatar. Anyone may edit
// their own profile; parents may edit any.
func (s *FamilyService) UpdateProfile(actor models.Actor, userID int64, name, avatarColor string) (*models.User, error) {
	if !actor.IsParent() && actor.UserID != userID {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateColor(avatarColor); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(actor, userID)
	if err != nil {
		return nil, err
	}
	if avatarColor == "" {
		avatarColor = user.AvatarColor
	}
	if err := s.users.UpdateProfile(user.ID, name, avatarColor); err != nil {
		return nil, err
	}
	user.Name = name
	user.AvatarColor = avatarColor
	return user, nil
}

// SetPIN sets or, with an empty pin, clears a profile's PIN
func (s *FamilyService) SetPIN(actor models.Actor, userID int64, pin, confirm string) error {
	if !actor.IsParent() && actor.UserID != userID {
		return ErrForbidden
	}
	if pin != confirm {
		return validation.ValidationError{Field: "pin", Message: "PINs do not match"}
	}
	pinHash, err := hashPIN(pin)
	if err != nil {
		return err
	}
	user, err := s.GetProfile(actor, userID)
	if err != nil {
		return err
	}
	return s.users.UpdatePIN(user.ID, pinHash)
}

// DeleteProfile removes a profile and everything it owns. The last parent
// of a family cannot be removed.
func (s *FamilyService) DeleteProfile(actor models.Actor, userID int64) error {
	if err := requireParent(actor); err != nil {
		return err
	}
	return s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		user, err := users.GetFamilyUser(actor.FamilyID, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrProfileNotFound
		}
		if user.IsParent() {
			count, err := users.CountParents(actor.FamilyID)
			if err != nil {
				return err
			}
			if count <= 1 {
				return ErrLastParent
			}
		}
		return users.DeleteUser(user.ID)
	})
}
