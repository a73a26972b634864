package service

import (
	"bytes"
	"testing"

	"chorequest/internal/models"
	"chorequest/internal/repository"
)

func TestBackupService_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	f := seedFamily(t, db)
	setBalances(t, db, f.child.UserID, 40, 1200)

	task := &models.Task{
		FamilyID: f.family.ID, Title: "Dishes", RewardPoints: 5, AssignedToID: f.child.UserID,
		Date: "2026-03-10", Status: models.TaskTodo, CreatedBy: models.RoleParent, Penalty: 5,
	}
	if err := repository.NewTaskRepository(db).CreateTask(task); err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}
	goal := &models.Goal{FamilyID: f.family.ID, ChildID: f.child.UserID, Title: "Bike", TargetAmount: 5000}
	if err := repository.NewGoalRepository(db).CreateGoal(goal); err != nil {
		t.Fatalf("CreateGoal() error: %v", err)
	}

	svc := NewBackupService(db)
	var buf bytes.Buffer
	if err := svc.ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter() error: %v", err)
	}

	if err := svc.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if u, _ := repository.NewUserRepository(db).GetUserByID(f.child.UserID); u != nil {
		t.Fatal("expected Clear() to remove every profile")
	}

	if err := svc.ImportFromReader(&buf); err != nil {
		t.Fatalf("ImportFromReader() error: %v", err)
	}

	child := getUser(t, db, f.child.UserID)
	if child.Name != "Ava" || child.Points != 40 || child.Balance != 1200 {
		t.Errorf("restored child = %+v", child)
	}
	restored, err := repository.NewTaskRepository(db).GetTask(f.family.ID, task.ID)
	if err != nil || restored == nil || restored.Title != "Dishes" || restored.Date != "2026-03-10" {
		t.Errorf("restored task = %+v, %v", restored, err)
	}
	goals, err := repository.NewGoalRepository(db).ListFamilyGoals(f.family.ID, 0)
	if err != nil || len(goals) != 1 || goals[0].TargetAmount != 5000 {
		t.Errorf("restored goals = %+v, %v", goals, err)
	}
}

func TestBackupService_RejectsUnknownVersion(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBackupService(db)

	err := svc.ImportFromReader(bytes.NewBufferString(`{"version": "0.1", "tables": {}}`))
	if err == nil {
		t.Error("expected an unsupported version to fail")
	}
}
