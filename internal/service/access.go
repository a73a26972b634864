package service

import (
	"chorequest/internal/models"
	"chorequest/internal/repository"
)

func requireParent(actor models.Actor) error {
	if !actor.IsParent() {
		return ErrForbidden
	}
	return nil
}

// loadChild fetches a child of the actor's family. Parents may act on any
// child; a child only on itself.
func loadChild(users *repository.UserRepository, actor models.Actor, childID int64) (*models.User, error) {
	if !actor.IsParent() && actor.UserID != childID {
		return nil, ErrForbidden
	}
	child, err := users.GetFamilyUser(actor.FamilyID, childID)
	if err != nil {
		return nil, err
	}
	if child == nil || !child.IsChild() {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// scopeChild resolves which child a listing is for: children always see their
// own data, parents see the requested child or, with 0, the whole family.
func scopeChild(actor models.Actor, childID int64) (int64, error) {
	if actor.IsParent() {
		return childID, nil
	}
	if childID != 0 && childID != actor.UserID {
		return 0, ErrForbidden
	}
	return actor.UserID, nil
}
