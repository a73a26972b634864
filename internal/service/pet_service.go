package service

import (
	"strings"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/pet"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// PetView is a pet with its derived appearance and the owner's energy
type PetView struct {
	Pet        models.Pet     `json:"pet"`
	Appearance pet.Appearance `json:"appearance"`
	Energy     int64          `json:"energy"`
}

// PetService runs adoption, decay and interactions
type PetService struct {
	db    *database.DB
	pets  *repository.PetRepository
	users *repository.UserRepository
	rules pet.Rules
	now   func() time.Time
}

// NewPetService creates a pet service
func NewPetService(db *database.DB, rules pet.Rules) *PetService {
	return &PetService{
		db:    db,
		pets:  repository.NewPetRepository(db),
		users: repository.NewUserRepository(db),
		rules: rules,
		now:   time.Now,
	}
}

func view(p models.Pet, energy int64) *PetView {
	return &PetView{Pet: p, Appearance: pet.AppearanceFor(p.Stage, p.Type), Energy: energy}
}

// Adopt hatches a child's pet. A child can only ever have one.
func (s *PetService) Adopt(actor models.Actor, childID int64, name string, petType models.PetType) (*PetView, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if !petType.Valid() {
		return nil, validation.ValidationError{Field: "type", Message: "unknown pet type"}
	}

	var result *PetView
	err := s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		pets := s.pets.WithTx(tx)

		child, err := loadChild(users, actor, childID)
		if err != nil {
			return err
		}
		existing, err := pets.GetPetByChild(child.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPetExists
		}

		p := pet.Adopt(child.ID, name, petType, s.now())
		p.FamilyID = actor.FamilyID
		if err := pets.CreatePet(&p); err != nil {
			return err
		}
		result = view(p, child.PetPoints)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPet loads a child's pet, applying and storing any passive decay
func (s *PetService) GetPet(actor models.Actor, childID int64) (*PetView, error) {
	child, err := loadChild(s.users, actor, childID)
	if err != nil {
		return nil, err
	}
	p, err := s.pets.GetPetByChild(child.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPetNotFound
	}

	decayed, err := s.refresh(s.pets, *p)
	if err != nil {
		return nil, err
	}
	return view(decayed, child.PetPoints), nil
}

// ListPets returns every pet of the family with decay applied
func (s *PetService) ListPets(actor models.Actor) ([]PetView, error) {
	pets, err := s.pets.ListFamilyPets(actor.FamilyID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListFamilyUsersByRole(actor.FamilyID, models.RoleChild)
	if err != nil {
		return nil, err
	}
	energy := make(map[int64]int64, len(users))
	for _, u := range users {
		energy[u.ID] = u.PetPoints
	}

	views := make([]PetView, 0, len(pets))
	for _, p := range pets {
		if !actor.IsParent() && p.ChildID != actor.UserID {
			continue
		}
		decayed, err := s.refresh(s.pets, p)
		if err != nil {
			return nil, err
		}
		views = append(views, *view(decayed, energy[p.ChildID]))
	}
	return views, nil
}

// refresh applies decay and writes the pet back only when a stat changed
func (s *PetService) refresh(pets *repository.PetRepository, p models.Pet) (models.Pet, error) {
	decayed, changed := pet.Decay(p, s.now(), s.rules)
	if !changed {
		return p, nil
	}
	if err := pets.UpdatePet(&decayed); err != nil {
		return p, err
	}
	return decayed, nil
}

// Feed spends energy to restore the pet's health
func (s *PetService) Feed(actor models.Actor, childID int64) (*PetView, error) {
	return s.interact(actor, childID, pet.Feed)
}

// Play spends energy to raise the pet's happiness
func (s *PetService) Play(actor models.Actor, childID int64) (*PetView, error) {
	return s.interact(actor, childID, pet.Play)
}

type interaction func(p models.Pet, energy int64, now time.Time, rules pet.Rules) (models.Pet, int64, error)

// interact applies pending decay, then the action, and stores the pet and the
// child's energy together
func (s *PetService) interact(actor models.Actor, childID int64, action interaction) (*PetView, error) {
	var result *PetView
	err := s.db.WithTx(func(tx *database.Tx) error {
		users := s.users.WithTx(tx)
		pets := s.pets.WithTx(tx)

		child, err := loadChild(users, actor, childID)
		if err != nil {
			return err
		}
		p, err := pets.GetPetByChild(child.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPetNotFound
		}

		now := s.now()
		decayed, _ := pet.Decay(*p, now, s.rules)
		updated, energy, err := action(decayed, child.PetPoints, now, s.rules)
		if err != nil {
			return err
		}
		if err := pets.UpdatePet(&updated); err != nil {
			return err
		}
		if err := users.UpdatePetPoints(child.ID, energy); err != nil {
			return err
		}
		result = view(updated, energy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Rename changes the pet's name
func (s *PetService) Rename(actor models.Actor, childID int64, name string) (*PetView, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	child, err := loadChild(s.users, actor, childID)
	if err != nil {
		return nil, err
	}
	p, err := s.pets.GetPetByChild(child.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPetNotFound
	}
	p.Name = name
	if err := s.pets.UpdatePet(p); err != nil {
		return nil, err
	}
	return view(*p, child.PetPoints), nil
}
