package service

import (
	"errors"

	"chorequest/internal/ledger"
	"chorequest/internal/pet"
)

var (
	ErrInsufficientPoints = ledger.ErrInsufficientPoints
	ErrInsufficientEnergy = pet.ErrInsufficientEnergy
	ErrNoBalance          = errors.New("no balance to pay out")

	ErrForbidden       = errors.New("not allowed for this profile")
	ErrChildNotFound   = errors.New("child not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrFamilyNotFound  = errors.New("family not found")
	ErrLastParent      = errors.New("a family needs at least one parent")

	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("task cannot change to that status")
	ErrTaskLocked        = errors.New("task is not available until its date")
	ErrRatingRequired    = errors.New("child-created tasks need a rating")

	ErrPetExists   = errors.New("child already has a pet")
	ErrPetNotFound = errors.New("pet not found")

	ErrGoalNotFound  = errors.New("goal not found")
	ErrEventNotFound = errors.New("event not found")

	ErrNoActiveQuiz = errors.New("no quiz in progress")
)
