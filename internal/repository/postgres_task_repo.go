package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, title, description, assignee, status, deadline, deadline_notified_at, created_by, created_at, updated_at`

// scanTask は1行分のタスクをスキャンする。
func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	task := &model.Task{}
	var notifiedAt sql.NullTime
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Assignee,
		&task.Status, &task.Deadline, &notifiedAt,
		&task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notifiedAt.Valid {
		task.DeadlineNotifiedAt = &notifiedAt.Time
	}
	return task, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, assignee, status, deadline, deadline_notified_at, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Title, task.Description, task.Assignee,
		task.Status, task.Deadline, task.DeadlineNotifiedAt,
		task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}
	return task, nil
}

// ListAll は全タスクをcreated_at昇順で返す。
func (r *PostgresTaskRepo) ListAll(ctx context.Context) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListByAssignee は指定担当者のタスクをcreated_at昇順で返す。
func (r *PostgresTaskRepo) ListByAssignee(ctx context.Context, assignee string) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assignee = $1 ORDER BY created_at ASC`,
		assignee,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by assignee: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Update はタスクの可変フィールドを一括で上書き更新する。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, assignee = $4, status = $5,
		     deadline = $6, deadline_notified_at = $7, updated_at = $8
		 WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Assignee,
		task.Status, task.Deadline, task.DeadlineNotifiedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListDeadlineCandidates は期限アラート対象のタスクをdeadline昇順で返す。
func (r *PostgresTaskRepo) ListDeadlineCandidates(ctx context.Context, until time.Time) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE status <> $1 AND deadline <= $2 AND deadline_notified_at IS NULL
		 ORDER BY deadline ASC`,
		model.TaskStatusCompleted, until,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadline candidates: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ClaimDeadlineNotice は送信済みマーカーをアトミックに刻印する。
// WHERE deadline_notified_at IS NULL の条件付きUPDATEにより、
// 並行するスキャナ実行のうち1つだけが刻印に成功する。
func (r *PostgresTaskRepo) ClaimDeadlineNotice(ctx context.Context, taskID string, notifiedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET deadline_notified_at = $2, updated_at = $2
		 WHERE id = $1 AND deadline_notified_at IS NULL`,
		taskID, notifiedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim deadline notice: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// collectTasks はクエリ結果の全行をタスクのスライスに変換する。
func collectTasks(rows *sql.Rows) ([]*model.Task, error) {
	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
