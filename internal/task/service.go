// Package task はタスク管理のビジネスロジックを提供する。
// ロールベースの認可、担当者の実在検証、通知トリガーを含む。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/repository"
)

// DirectoryService はIdPユーザーディレクトリへの問い合わせインターフェース。
// directory.Clientの部分集合として定義する。
type DirectoryService interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NotificationDispatcher はタスクイベント通知のインターフェース。
// 通知の失敗はDispatcher側で処理され、呼び出し元には伝播しない。
type NotificationDispatcher interface {
	NotifyAssignment(ctx context.Context, task *model.Task, assignee *model.User)
	NotifyStatusChange(ctx context.Context, task *model.Task, oldStatus, newStatus model.TaskStatus, updatedBy string)
}

// ContentSanitizer はタスク本文のサニタイズインターフェース。
type ContentSanitizer interface {
	Sanitize(raw string) string
}

// TaskMetrics はタスク操作メトリクスの記録インターフェース。
type TaskMetrics interface {
	RecordTaskCreated()
	RecordTaskUpdated()
	RecordTaskDeleted()
}

type noopTaskMetrics struct{}

func (noopTaskMetrics) RecordTaskCreated() {}
func (noopTaskMetrics) RecordTaskUpdated() {}
func (noopTaskMetrics) RecordTaskDeleted() {}

// Service はタスクに関するビジネスロジックを提供する。
type Service struct {
	repo       repository.TaskRepository
	directory  DirectoryService
	dispatcher NotificationDispatcher
	sanitizer  ContentSanitizer
	metrics    TaskMetrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	repo repository.TaskRepository,
	directory DirectoryService,
	dispatcher NotificationDispatcher,
	sanitizer ContentSanitizer,
	metrics TaskMetrics,
) *Service {
	if metrics == nil {
		metrics = noopTaskMetrics{}
	}
	return &Service{
		repo:       repo,
		directory:  directory,
		dispatcher: dispatcher,
		sanitizer:  sanitizer,
		metrics:    metrics,
	}
}

// CreateTaskInput はタスク作成の入力を表す。
type CreateTaskInput struct {
	Title       string
	Description string
	Assignee    string
	Deadline    time.Time
}

// UpdateTaskInput はタスク更新の入力を表す。nilフィールドは変更しない。
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Assignee    *string
	Status      *string
	Deadline    *time.Time
}

// CreateTask は新規タスクを作成する。admin専用。
// 担当者はIdPに実在しメールアドレスを持つユーザーでなければならない。
// 作成されたタスクのステータスは必ずNewになる。
// 作成後、担当者への割り当てメール通知をトリガーする（fire-and-forget）。
func (s *Service) CreateTask(ctx context.Context, p *model.Principal, in CreateTaskInput) (*model.Task, error) {
	if !p.IsAdmin() {
		return nil, model.NewForbiddenError("タスクの作成はadminのみ可能です")
	}

	if in.Title == "" {
		return nil, model.NewInvalidRequestError("titleは必須です")
	}
	if in.Assignee == "" {
		return nil, model.NewInvalidRequestError("assigneeは必須です")
	}
	if in.Deadline.IsZero() {
		return nil, model.NewInvalidDeadlineError("deadlineは必須です")
	}

	// 担当者の実在検証（ストアではなくIdPディレクトリに対して行う）
	assignee, err := s.verifyAssignee(ctx, in.Assignee)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		Title:       s.sanitizer.Sanitize(in.Title),
		Description: s.sanitizer.Sanitize(in.Description),
		Assignee:    in.Assignee,
		Status:      model.TaskStatusNew,
		Deadline:    in.Deadline,
		CreatedBy:   p.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.RecordTaskCreated()
	slog.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("assignee", task.Assignee),
		slog.String("created_by", p.UserID),
	)

	s.dispatcher.NotifyAssignment(ctx, task, assignee)

	return task, nil
}

// ListTasks はタスク一覧をcreated_at昇順で返す。
// adminは全タスク、memberは自分に割り当てられたタスクのみを取得できる。
func (s *Service) ListTasks(ctx context.Context, p *model.Principal) ([]*model.Task, error) {
	if p.IsAdmin() {
		tasks, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		return tasks, nil
	}

	tasks, err := s.repo.ListByAssignee(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by assignee: %w", err)
	}
	return tasks, nil
}

// GetTask は指定IDのタスクを取得する。
// memberは自分に割り当てられたタスクのみ取得できる。
func (s *Service) GetTask(ctx context.Context, p *model.Principal, id string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}

	if !p.IsAdmin() && task.Assignee != p.UserID {
		return nil, model.NewForbiddenError("自分に割り当てられたタスクのみ参照できます")
	}

	return task, nil
}

// UpdateTask はタスクを更新する。
// adminは全フィールドを更新できる。memberは自分に割り当てられたタスクの
// statusのみ更新できる（それ以外の変更はFORBIDDEN）。
// ステータス遷移の順序は強制しない（Completed→Newも許可される）。
// ステータス変更時はプッシュ通知、担当者変更時は新担当者への
// メール通知をトリガーする（いずれもfire-and-forget）。
func (s *Service) UpdateTask(ctx context.Context, p *model.Principal, id string, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}

	if !p.IsAdmin() {
		if task.Assignee != p.UserID {
			return nil, model.NewForbiddenError("自分に割り当てられたタスクのみ更新できます")
		}
		if in.Title != nil || in.Description != nil || in.Assignee != nil || in.Deadline != nil {
			return nil, model.NewForbiddenError("memberが変更できるのはstatusのみです")
		}
	}

	oldStatus := task.Status
	oldAssignee := task.Assignee
	var newAssignee *model.User

	if in.Status != nil {
		status := model.TaskStatus(*in.Status)
		if !model.ValidTaskStatus(status) {
			return nil, model.NewInvalidStatusError(*in.Status)
		}
		task.Status = status
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, model.NewInvalidRequestError("titleを空にすることはできません")
		}
		task.Title = s.sanitizer.Sanitize(*in.Title)
	}
	if in.Description != nil {
		task.Description = s.sanitizer.Sanitize(*in.Description)
	}

	if in.Assignee != nil && *in.Assignee != task.Assignee {
		assignee, err := s.verifyAssignee(ctx, *in.Assignee)
		if err != nil {
			return nil, err
		}
		task.Assignee = *in.Assignee
		newAssignee = assignee
	}

	if in.Deadline != nil && !in.Deadline.Equal(task.Deadline) {
		if in.Deadline.IsZero() {
			return nil, model.NewInvalidDeadlineError("deadlineを空にすることはできません")
		}
		task.Deadline = *in.Deadline
		// 期限が変わったら送信済みマーカーをリセットし、
		// 新しい期限に対するアラートを再び有効にする
		task.DeadlineNotifiedAt = nil
	}

	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.metrics.RecordTaskUpdated()
	slog.Info("task updated",
		slog.String("task_id", task.ID),
		slog.String("updated_by", p.UserID),
	)

	if task.Status != oldStatus {
		s.dispatcher.NotifyStatusChange(ctx, task, oldStatus, task.Status, p.Username)
	}
	if newAssignee != nil && task.Assignee != oldAssignee {
		s.dispatcher.NotifyAssignment(ctx, task, newAssignee)
	}

	return task, nil
}

// DeleteTask は指定IDのタスクを削除する。admin専用。
// 存在しないIDの場合はTASK_NOT_FOUNDを返す（2回目の削除も同様）。
func (s *Service) DeleteTask(ctx context.Context, p *model.Principal, id string) error {
	if !p.IsAdmin() {
		return model.NewForbiddenError("タスクの削除はadminのみ可能です")
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return model.NewTaskNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.metrics.RecordTaskDeleted()
	slog.Info("task deleted",
		slog.String("task_id", id),
		slog.String("deleted_by", p.UserID),
	)

	return nil
}

// verifyAssignee は担当者がIdPに実在しメールアドレスを持つことを検証する。
func (s *Service) verifyAssignee(ctx context.Context, assigneeID string) (*model.User, error) {
	user, err := s.directory.FindByID(ctx, assigneeID)
	if err != nil {
		return nil, model.NewDirectoryError(err.Error())
	}
	if user == nil {
		return nil, model.NewAssigneeNotFoundError(assigneeID)
	}
	if user.Email == "" {
		return nil, model.NewAssigneeNoEmailError(assigneeID)
	}
	return user, nil
}
