package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

type testFamily struct {
	family  *models.Family
	parent  models.Actor
	child   models.Actor
	sibling models.Actor
}

func seedFamily(t *testing.T, db *database.DB) testFamily {
	t.Helper()
	families := repository.NewFamilyRepository(db)
	users := repository.NewUserRepository(db)

	family, err := families.CreateFamily("Smith", "smith@example.com", "hash", "SMITH1")
	if err != nil {
		t.Fatalf("CreateFamily() error: %v", err)
	}

	create := func(name string, role models.Role) models.Actor {
		u := &models.User{FamilyID: family.ID, Name: name, Role: role}
		if err := users.CreateUser(u); err != nil {
			t.Fatalf("CreateUser(%s) error: %v", name, err)
		}
		return models.Actor{FamilyID: family.ID, UserID: u.ID, Role: role}
	}

	return testFamily{
		family:  family,
		parent:  create("Mum", models.RoleParent),
		child:   create("Ava", models.RoleChild),
		sibling: create("Ben", models.RoleChild),
	}
}

func getUser(t *testing.T, db *database.DB, id int64) *models.User {
	t.Helper()
	u, err := repository.NewUserRepository(db).GetUserByID(id)
	if err != nil || u == nil {
		t.Fatalf("GetUserByID(%d) = %v, %v", id, u, err)
	}
	return u
}

func setBalances(t *testing.T, db *database.DB, id, points, balance int64) {
	t.Helper()
	if err := repository.NewUserRepository(db).UpdateBalances(id, points, balance); err != nil {
		t.Fatalf("UpdateBalances() error: %v", err)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type sentNotification struct {
	userID   int64
	familyID int64
	n        Notification
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) NotifyUser(ctx context.Context, userID int64, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{userID: userID, n: n})
}

func (f *fakeNotifier) NotifyParents(ctx context.Context, familyID int64, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{familyID: familyID, n: n})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeMailer struct {
	welcome  []string
	receipts []string
	amounts  []int64
}

func (f *fakeMailer) SendWelcomeEmail(ctx context.Context, toEmail, familyName string) error {
	f.welcome = append(f.welcome, toEmail)
	return nil
}

func (f *fakeMailer) SendPayoutReceipt(ctx context.Context, toEmail, childName string, amount int64, paidAt time.Time) error {
	f.receipts = append(f.receipts, toEmail)
	f.amounts = append(f.amounts, amount)
	return nil
}
