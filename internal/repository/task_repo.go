package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db database.DBTX
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *TaskRepository) WithTx(tx database.DBTX) *TaskRepository {
	return &TaskRepository{db: tx}
}

const taskColumns = `id, family_id, title, description, reward_points, reward_money, assigned_to_id,
	due_date, status, created_by, is_recurring, recurring_frequency, penalty, proof_image, feedback,
	created_at, updated_at`

func scanTask(s rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := s.Scan(
		&task.ID,
		&task.FamilyID,
		&task.Title,
		&task.Description,
		&task.RewardPoints,
		&task.RewardMoney,
		&task.AssignedToID,
		&task.Date,
		&task.Status,
		&task.CreatedBy,
		&task.IsRecurring,
		&task.RecurringFrequency,
		&task.Penalty,
		&task.ProofImage,
		&task.Feedback,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}

// CreateTask inserts a task and sets its ID
func (r *TaskRepository) CreateTask(task *models.Task) error {
	now := time.Now()
	query := `
		INSERT INTO tasks (family_id, title, description, reward_points, reward_money, assigned_to_id,
			due_date, status, created_by, is_recurring, recurring_frequency, penalty, proof_image, feedback,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		task.FamilyID, task.Title, task.Description, task.RewardPoints, task.RewardMoney, task.AssignedToID,
		task.Date, task.Status, task.CreatedBy, task.IsRecurring, task.RecurringFrequency, task.Penalty,
		task.ProofImage, task.Feedback, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetTask retrieves a task only if it belongs to the family
func (r *TaskRepository) GetTask(familyID, id int64) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND family_id = ?"
	task, err := scanTask(r.db.QueryRow(query, id, familyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) listTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ListFamilyTasks returns every task in a family ordered by day
func (r *TaskRepository) ListFamilyTasks(familyID int64) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE family_id = ? ORDER BY due_date, id"
	return r.listTasks(query, familyID)
}

// ListChildTasks returns the tasks assigned to one child ordered by day
func (r *TaskRepository) ListChildTasks(childID int64) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE assigned_to_id = ? ORDER BY due_date, id"
	return r.listTasks(query, childID)
}

// ListPendingApproval returns the family's tasks awaiting a parent decision
func (r *TaskRepository) ListPendingApproval(familyID int64) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE family_id = ? AND status = ? ORDER BY due_date, id"
	return r.listTasks(query, familyID, models.TaskPendingApproval)
}

// UpdateTaskStatus moves a task to a new status, storing proof and feedback alongside
func (r *TaskRepository) UpdateTaskStatus(id int64, status models.TaskStatus, proofImage, feedback string) error {
	query := "UPDATE tasks SET status = ?, proof_image = ?, feedback = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, status, proofImage, feedback, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// ApproveTask marks a task approved and stores the reward it was settled with
func (r *TaskRepository) ApproveTask(id, rewardPoints, rewardMoney int64) error {
	query := `
		UPDATE tasks SET status = ?, reward_points = ?, reward_money = ?, updated_at = ?
		WHERE id = ? AND status <> ?
	`
	result, err := r.db.Exec(query, models.TaskApproved, rewardPoints, rewardMoney, time.Now(), id, models.TaskApproved)
	if err != nil {
		return fmt.Errorf("failed to approve task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to approve task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to approve task %d: already approved or missing", id)
	}
	return nil
}

// UpdateTask saves editable task fields
func (r *TaskRepository) UpdateTask(task *models.Task) error {
	task.UpdatedAt = time.Now()
	query := `
		UPDATE tasks
		SET title = ?, description = ?, reward_points = ?, reward_money = ?, assigned_to_id = ?,
			due_date = ?, is_recurring = ?, recurring_frequency = ?, penalty = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		task.Title, task.Description, task.RewardPoints, task.RewardMoney, task.AssignedToID,
		task.Date, task.IsRecurring, task.RecurringFrequency, task.Penalty, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task
func (r *TaskRepository) DeleteTask(id int64) error {
	if _, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
