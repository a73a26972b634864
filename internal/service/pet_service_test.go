package service

import (
	"errors"
	"testing"
	"time"

	"chorequest/internal/models"
	"chorequest/internal/pet"
	"chorequest/internal/repository"
)

func TestPetService_Adopt(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewPetService(db, pet.DefaultRules())

	v, err := svc.Adopt(f.child, f.child.UserID, "Sparky", models.PetDragon)
	if err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}
	if v.Pet.Stage != 1 || v.Pet.Health != 100 || v.Pet.Happiness != 100 || v.Pet.Experience != 0 {
		t.Errorf("unexpected new pet: %+v", v.Pet)
	}
	if v.Appearance.Phase != pet.PhaseFor(1) {
		t.Errorf("Appearance.Phase = %v, want %v", v.Appearance.Phase, pet.PhaseFor(1))
	}

	if _, err := svc.Adopt(f.parent, f.child.UserID, "Second", models.PetCat); !errors.Is(err, ErrPetExists) {
		t.Errorf("second Adopt() err = %v, want ErrPetExists", err)
	}
	if _, err := svc.Adopt(f.child, f.sibling.UserID, "Other", models.PetCat); !errors.Is(err, ErrForbidden) {
		t.Errorf("adopting for a sibling: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Adopt(f.sibling, f.sibling.UserID, "Rex", "T-REX"); err == nil {
		t.Error("expected an unknown pet type to be rejected")
	}
}

func TestPetService_Interactions(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewPetService(db, pet.DefaultRules())
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(start)

	if _, err := svc.Adopt(f.child, f.child.UserID, "Sparky", models.PetDog); err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}

	if _, err := svc.Feed(f.child, f.child.UserID); !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("Feed() with no energy: err = %v, want ErrInsufficientEnergy", err)
	}

	if err := repository.NewUserRepository(db).UpdatePetPoints(f.child.UserID, 12); err != nil {
		t.Fatalf("UpdatePetPoints() error: %v", err)
	}

	// Two hours pass: decay applies before the feed
	svc.now = fixedClock(start.Add(2*time.Hour + 10*time.Minute))
	v, err := svc.Feed(f.child, f.child.UserID)
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	if v.Energy != 2 {
		t.Errorf("Energy = %d, want 2", v.Energy)
	}
	if v.Pet.Health != 100 || v.Pet.Happiness != 90 || v.Pet.Experience != 5 {
		t.Errorf("after feed = %+v, want health 100, happiness 90, xp 5", v.Pet)
	}
	if !v.Pet.LastInteraction.Equal(start.Add(2*time.Hour + 10*time.Minute)) {
		t.Errorf("LastInteraction = %v, want the feed time", v.Pet.LastInteraction)
	}

	if _, err := svc.Play(f.child, f.child.UserID); !errors.Is(err, ErrInsufficientEnergy) {
		t.Errorf("Play() with 2 energy: err = %v, want ErrInsufficientEnergy", err)
	}
	if got := getUser(t, db, f.child.UserID).PetPoints; got != 2 {
		t.Errorf("energy after failed play = %d, want 2", got)
	}
}

func TestPetService_DecayFloorsAtZero(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewPetService(db, pet.DefaultRules())
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(start)

	v, err := svc.Adopt(f.child, f.child.UserID, "Hoot", models.PetOwl)
	if err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}
	p := v.Pet
	p.Health = 10
	p.Happiness = 15
	if err := repository.NewPetRepository(db).UpdatePet(&p); err != nil {
		t.Fatalf("UpdatePet() error: %v", err)
	}

	svc.now = fixedClock(start.Add(5 * time.Hour))
	got, err := svc.GetPet(f.parent, f.child.UserID)
	if err != nil {
		t.Fatalf("GetPet() error: %v", err)
	}
	if got.Pet.Health != 0 || got.Pet.Happiness != 0 {
		t.Errorf("after decay = %d/%d, want 0/0", got.Pet.Health, got.Pet.Happiness)
	}

	stored, err := repository.NewPetRepository(db).GetPetByChild(f.child.UserID)
	if err != nil || stored == nil {
		t.Fatalf("GetPetByChild() = %v, %v", stored, err)
	}
	if stored.Health != 0 || !stored.LastInteraction.Equal(start) {
		t.Errorf("stored pet = %+v, want decayed health and untouched LastInteraction", stored)
	}

	views, err := svc.ListPets(f.sibling)
	if err != nil || len(views) != 0 {
		t.Errorf("sibling ListPets() = %d pets, %v, want none", len(views), err)
	}
	views, err = svc.ListPets(f.parent)
	if err != nil || len(views) != 1 {
		t.Errorf("parent ListPets() = %d pets, %v, want 1", len(views), err)
	}
}

func TestPetService_Evolves(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	svc := NewPetService(db, pet.DefaultRules())
	svc.now = fixedClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	v, err := svc.Adopt(f.child, f.child.UserID, "Nyx", models.PetCat)
	if err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}
	p := v.Pet
	p.Experience = 95
	if err := repository.NewPetRepository(db).UpdatePet(&p); err != nil {
		t.Fatalf("UpdatePet() error: %v", err)
	}
	if err := repository.NewUserRepository(db).UpdatePetPoints(f.child.UserID, 5); err != nil {
		t.Fatalf("UpdatePetPoints() error: %v", err)
	}

	got, err := svc.Play(f.child, f.child.UserID)
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if got.Pet.Stage != 2 || got.Pet.Experience != 0 || got.Energy != 0 {
		t.Errorf("after play = %+v energy %d, want stage 2, xp 0, energy 0", got.Pet, got.Energy)
	}
	if got.Appearance.Phase != pet.PhaseFor(2) {
		t.Errorf("Appearance.Phase = %v, want %v", got.Appearance.Phase, pet.PhaseFor(2))
	}

	renamed, err := svc.Rename(f.child, f.child.UserID, "  Nyxie ")
	if err != nil || renamed.Pet.Name != "Nyxie" {
		t.Errorf("Rename() = %v, %v", renamed, err)
	}
}
