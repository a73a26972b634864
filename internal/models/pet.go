package models

import "time"

// PetType is the species of a pet
type PetType string

const (
	PetDragon  PetType = "DRAGON"
	PetUnicorn PetType = "UNICORN"
	PetCat     PetType = "CAT"
	PetDog     PetType = "DOG"
	PetOwl     PetType = "OWL"
)

// Valid reports whether t is a known species
func (t PetType) Valid() bool {
	switch t {
	case PetDragon, PetUnicorn, PetCat, PetDog, PetOwl:
		return true
	}
	return false
}

// Pet is a child's virtual pet
type Pet struct {
	ID              int64     `json:"id"`
	FamilyID        int64     `json:"familyId"`
	ChildID         int64     `json:"childId"`
	Name            string    `json:"name"`
	Type            PetType   `json:"type"`
	Stage           int       `json:"stage"`
	Health          int       `json:"health"`
	Happiness       int       `json:"happiness"`
	Experience      int       `json:"experience"`
	LastInteraction time.Time `json:"lastInteraction"`
	CreatedAt       time.Time `json:"createdAt"`
}
