package repository

import (
	"path/filepath"
	"testing"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
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

func seedFamily(t *testing.T, db *database.DB) (*models.Family, *models.User, *models.User) {
	t.Helper()
	families := NewFamilyRepository(db)
	users := NewUserRepository(db)

	family, err := families.CreateFamily("Smith", "smith@example.com", "hash", "SMITH1")
	if err != nil {
		t.Fatalf("CreateFamily() error: %v", err)
	}
	parent := &models.User{FamilyID: family.ID, Name: "Mum", Role: models.RoleParent}
	if err := users.CreateUser(parent); err != nil {
		t.Fatalf("CreateUser(parent) error: %v", err)
	}
	child := &models.User{FamilyID: family.ID, Name: "Ava", Role: models.RoleChild}
	if err := users.CreateUser(child); err != nil {
		t.Fatalf("CreateUser(child) error: %v", err)
	}
	return family, parent, child
}

func TestFamilyRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamilyRepository(db)
	family, _, _ := seedFamily(t, db)

	got, err := repo.GetFamilyByEmail("smith@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetFamilyByEmail() = %v, %v", got, err)
	}
	if got.ID != family.ID || got.FamilyCode != "SMITH1" {
		t.Errorf("unexpected family: %+v", got)
	}

	missing, err := repo.GetFamilyByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("expected nil family for unknown email, got %v, %v", missing, err)
	}

	exists, err := repo.FamilyCodeExists("SMITH1")
	if err != nil || !exists {
		t.Errorf("FamilyCodeExists() = %v, %v", exists, err)
	}

	if err := repo.LinkOAuthProvider(family.ID, "google", "sub-1"); err != nil {
		t.Fatalf("LinkOAuthProvider() error: %v", err)
	}
	linked, err := repo.GetFamilyByOAuth("google", "sub-1")
	if err != nil || linked == nil || linked.ID != family.ID {
		t.Errorf("GetFamilyByOAuth() = %v, %v", linked, err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamilyRepository(db)
	family, _, _ := seedFamily(t, db)

	if _, err := repo.CreateSession("live", family.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if _, err := repo.CreateSession("stale", family.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if err := repo.DeleteExpiredSessions(); err != nil {
		t.Fatalf("DeleteExpiredSessions() error: %v", err)
	}

	if s, _ := repo.GetSession("live"); s == nil {
		t.Error("live session was removed")
	}
	if s, _ := repo.GetSession("stale"); s != nil {
		t.Error("stale session was kept")
	}
}

func TestUserAllowanceRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	_, _, child := seedFamily(t, db)

	got, err := repo.GetUserByID(child.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error: %v", err)
	}
	if got.Allowance != nil || got.AllowancePaidThrough != nil {
		t.Fatalf("new child should have no allowance, got %+v", got.Allowance)
	}

	settings := &models.AllowanceSettings{Amount: 500, Frequency: models.AllowanceWeekly, Day: 6, PointThreshold: 100}
	if err := repo.UpdateAllowance(child.ID, settings); err != nil {
		t.Fatalf("UpdateAllowance() error: %v", err)
	}
	paid := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	if err := repo.SetAllowancePaidThrough(child.ID, paid); err != nil {
		t.Fatalf("SetAllowancePaidThrough() error: %v", err)
	}

	got, _ = repo.GetUserByID(child.ID)
	if got.Allowance == nil || *got.Allowance != *settings {
		t.Errorf("Allowance = %+v, want %+v", got.Allowance, settings)
	}
	if got.AllowancePaidThrough == nil || !got.AllowancePaidThrough.Equal(paid) {
		t.Errorf("AllowancePaidThrough = %v, want %v", got.AllowancePaidThrough, paid)
	}

	withAllowance, err := repo.ListChildrenWithAllowance()
	if err != nil || len(withAllowance) != 1 {
		t.Errorf("ListChildrenWithAllowance() = %d users, %v", len(withAllowance), err)
	}

	// Changing settings resets the paid-through marker
	if err := repo.UpdateAllowance(child.ID, nil); err != nil {
		t.Fatalf("UpdateAllowance(nil) error: %v", err)
	}
	got, _ = repo.GetUserByID(child.ID)
	if got.Allowance != nil || got.AllowancePaidThrough != nil {
		t.Errorf("expected cleared allowance, got %+v", got.Allowance)
	}
}

func TestZeroBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	_, _, child := seedFamily(t, db)

	if err := repo.UpdateBalances(child.ID, 30, 250); err != nil {
		t.Fatalf("UpdateBalances() error: %v", err)
	}

	changed, err := repo.ZeroBalance(child.ID, 100)
	if err != nil || changed {
		t.Errorf("ZeroBalance(stale snapshot) = %v, %v; want false", changed, err)
	}
	changed, err = repo.ZeroBalance(child.ID, 250)
	if err != nil || !changed {
		t.Errorf("ZeroBalance(current snapshot) = %v, %v; want true", changed, err)
	}

	got, _ := repo.GetUserByID(child.ID)
	if got.Balance != 0 || got.Points != 30 {
		t.Errorf("balances = %d points, %d money; want 30, 0", got.Points, got.Balance)
	}
}

func TestUserFamilyScoping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	family, _, child := seedFamily(t, db)

	other, err := NewFamilyRepository(db).CreateFamily("Jones", "jones@example.com", "", "JONES1")
	if err != nil {
		t.Fatalf("CreateFamily() error: %v", err)
	}

	if u, _ := repo.GetFamilyUser(other.ID, child.ID); u != nil {
		t.Error("child visible from another family")
	}
	if u, _ := repo.GetFamilyUser(family.ID, child.ID); u == nil {
		t.Error("child not visible from own family")
	}

	users, err := repo.ListFamilyUsers(family.ID)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListFamilyUsers() = %d users, %v", len(users), err)
	}
	if users[0].Role != models.RoleParent {
		t.Errorf("expected parents first, got %s", users[0].Role)
	}
}

func TestTaskRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	family, _, child := seedFamily(t, db)

	task := &models.Task{
		FamilyID:           family.ID,
		Title:              "Feed the cat",
		RewardPoints:       10,
		AssignedToID:       child.ID,
		Date:               "2024-05-01",
		Status:             models.TaskTodo,
		CreatedBy:          models.RoleParent,
		IsRecurring:        true,
		RecurringFrequency: models.FrequencyDaily,
		Penalty:            models.DefaultPenalty,
	}
	if err := repo.CreateTask(task); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	got, err := repo.GetTask(family.ID, task.ID)
	if err != nil || got == nil {
		t.Fatalf("GetTask() = %v, %v", got, err)
	}
	if !got.IsRecurring || got.RecurringFrequency != models.FrequencyDaily || got.Date != "2024-05-01" {
		t.Errorf("unexpected task: %+v", got)
	}

	if err := repo.UpdateTaskStatus(task.ID, models.TaskPendingApproval, "proof.png", ""); err != nil {
		t.Fatalf("UpdateTaskStatus() error: %v", err)
	}
	pending, err := repo.ListPendingApproval(family.ID)
	if err != nil || len(pending) != 1 || pending[0].ProofImage != "proof.png" {
		t.Errorf("ListPendingApproval() = %+v, %v", pending, err)
	}

	if err := repo.ApproveTask(task.ID, 8, 0); err != nil {
		t.Fatalf("ApproveTask() error: %v", err)
	}
	if err := repo.ApproveTask(task.ID, 8, 0); err == nil {
		t.Error("second ApproveTask() should fail")
	}

	got, _ = repo.GetTask(family.ID, task.ID)
	if got.Status != models.TaskApproved || got.RewardPoints != 8 {
		t.Errorf("approved task = %+v", got)
	}

	if err := repo.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask() error: %v", err)
	}
	if got, _ := repo.GetTask(family.ID, task.ID); got != nil {
		t.Error("task still present after delete")
	}
}

func TestTaskRollbackInTransaction(t *testing.T) {
	db := setupTestDB(t)
	family, _, child := seedFamily(t, db)

	err := db.WithTx(func(tx *database.Tx) error {
		task := &models.Task{FamilyID: family.ID, Title: "Dishes", AssignedToID: child.ID,
			Date: "2024-05-01", Status: models.TaskTodo, CreatedBy: models.RoleParent}
		if err := NewTaskRepository(tx).CreateTask(task); err != nil {
			return err
		}
		// Negative balances violate the CHECK constraint and abort the transaction
		return NewUserRepository(tx).UpdateBalances(child.ID, -1, 0)
	})
	if err == nil {
		t.Fatal("expected constraint violation")
	}

	tasks, _ := NewTaskRepository(db).ListChildTasks(child.ID)
	if len(tasks) != 0 {
		t.Errorf("expected rollback to discard task, found %d", len(tasks))
	}
}

func TestGoalsAndPayouts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGoalRepository(db)
	family, _, child := seedFamily(t, db)

	goal := &models.Goal{FamilyID: family.ID, ChildID: child.ID, Title: "Bike", TargetAmount: 10000}
	if err := repo.CreateGoal(goal); err != nil {
		t.Fatalf("CreateGoal() error: %v", err)
	}
	goals, err := repo.ListFamilyGoals(family.ID, child.ID)
	if err != nil || len(goals) != 1 || goals[0].Title != "Bike" {
		t.Errorf("ListFamilyGoals() = %+v, %v", goals, err)
	}

	older := &models.PayoutRecord{FamilyID: family.ID, ChildID: child.ID, Amount: 100, Date: time.Now().Add(-time.Hour)}
	newer := &models.PayoutRecord{FamilyID: family.ID, ChildID: child.ID, Amount: 200, Date: time.Now()}
	for _, p := range []*models.PayoutRecord{older, newer} {
		if err := repo.CreatePayout(p); err != nil {
			t.Fatalf("CreatePayout() error: %v", err)
		}
	}
	payouts, err := repo.ListPayouts(family.ID, 0)
	if err != nil || len(payouts) != 2 {
		t.Fatalf("ListPayouts() = %d, %v", len(payouts), err)
	}
	if payouts[0].Amount != 200 {
		t.Errorf("expected newest payout first, got %d", payouts[0].Amount)
	}
}

func TestPetUniquePerChild(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPetRepository(db)
	family, _, child := seedFamily(t, db)

	p := &models.Pet{FamilyID: family.ID, ChildID: child.ID, Name: "Sparky", Type: models.PetDragon,
		Stage: 1, Health: 100, Happiness: 100, LastInteraction: time.Now()}
	if err := repo.CreatePet(p); err != nil {
		t.Fatalf("CreatePet() error: %v", err)
	}
	dup := *p
	if err := repo.CreatePet(&dup); err == nil {
		t.Error("second pet for the same child should fail")
	}

	p.Stage = 3
	p.Experience = 40
	if err := repo.UpdatePet(p); err != nil {
		t.Fatalf("UpdatePet() error: %v", err)
	}
	got, err := repo.GetPetByChild(child.ID)
	if err != nil || got == nil || got.Stage != 3 || got.Experience != 40 {
		t.Errorf("GetPetByChild() = %+v, %v", got, err)
	}
}

func TestCalendarAndPush(t *testing.T) {
	db := setupTestDB(t)
	family, _, child := seedFamily(t, db)
	calendar := NewCalendarRepository(db)

	event := &models.CalendarEvent{FamilyID: family.ID, ChildID: child.ID, Title: "Swimming", IsRecurring: true, DayOfWeek: 2, Time: "17:00"}
	if err := calendar.CreateEvent(event); err != nil {
		t.Fatalf("CreateEvent() error: %v", err)
	}
	events, err := calendar.ListEvents(family.ID, child.ID)
	if err != nil || len(events) != 1 || !events[0].IsRecurring {
		t.Errorf("ListEvents() = %+v, %v", events, err)
	}

	push := NewPushRepository(db)
	sub := &models.PushSubscription{UserID: child.ID, Endpoint: "https://push.example/1", P256dh: "key", Auth: "auth"}
	if err := push.SaveSubscription(sub); err != nil {
		t.Fatalf("SaveSubscription() error: %v", err)
	}
	// Re-registering the same endpoint replaces the row
	if err := push.SaveSubscription(sub); err != nil {
		t.Fatalf("SaveSubscription() again error: %v", err)
	}
	subs, err := push.ListUserSubscriptions(child.ID)
	if err != nil || len(subs) != 1 {
		t.Errorf("ListUserSubscriptions() = %d, %v", len(subs), err)
	}
}

func TestGameResults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGameResultRepository(db)
	family, _, child := seedFamily(t, db)

	for i, score := range []int{3, 7} {
		g := &models.GameResult{FamilyID: family.ID, ChildID: child.ID, Category: models.QuizMath,
			Score: score, CorrectCount: score, IsNewRecord: i == 1, Date: time.Now().Add(time.Duration(i) * time.Minute)}
		if err := repo.CreateResult(g); err != nil {
			t.Fatalf("CreateResult() error: %v", err)
		}
	}
	results, err := repo.ListResults(family.ID, child.ID, 1)
	if err != nil || len(results) != 1 {
		t.Fatalf("ListResults() = %d, %v", len(results), err)
	}
	if results[0].Score != 7 || !results[0].IsNewRecord {
		t.Errorf("expected newest result first, got %+v", results[0])
	}
}
