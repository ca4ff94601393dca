package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
)

// 通知チャネル名（メトリクスのラベルに使用）
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// MetricsRecorder は通知配信メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordNotificationSent(channel string)
	RecordNotificationFailure(channel string)
}

// noopMetrics はメトリクス未設定時のダミー実装。
type noopMetrics struct{}

func (noopMetrics) RecordNotificationSent(string)    {}
func (noopMetrics) RecordNotificationFailure(string) {}

// Dispatcher はタスクイベントの通知を配信する。
// すべての通知はfire-and-forgetであり、配信失敗はログとメトリクスに
// 記録されるのみで呼び出し元にエラーとして伝播しない。
// email/pushが未設定（nil）の場合は該当チャネルの通知をスキップする。
type Dispatcher struct {
	email   EmailSender
	push    PushPublisher
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewDispatcher はDispatcherを生成する。
// emailまたはpushはnilを許容する（チャネル無効化）。
// metricsがnilの場合は記録を行わない。
func NewDispatcher(email EmailSender, push PushPublisher, logger *slog.Logger, metrics MetricsRecorder) *Dispatcher {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Dispatcher{
		email:   email,
		push:    push,
		logger:  logger,
		metrics: metrics,
	}
}

// NotifyAssignment はタスク割り当てのメール通知を送信する。
// タスク作成時および再割り当て時に呼び出される。
func (d *Dispatcher) NotifyAssignment(ctx context.Context, task *model.Task, assignee *model.User) {
	if d.email == nil {
		d.logger.Info("メールリレーが未設定のためメール通知をスキップします",
			slog.String("task_id", task.ID),
		)
		return
	}
	if assignee.Email == "" {
		d.logger.Warn("担当者のメールアドレスが未登録のためメール通知をスキップします",
			slog.String("task_id", task.ID),
			slog.String("assignee", assignee.ID),
		)
		return
	}

	subject := "新しいタスクが割り当てられました"
	body := fmt.Sprintf(
		"%s さん\n\nタスク「%s」があなたに割り当てられました。\n%s\n期限: %s\n\nよろしくお願いします。",
		assignee.Username, task.Title, task.Description,
		task.Deadline.Format(time.RFC3339),
	)

	if err := d.email.Send(ctx, assignee.Email, subject, body); err != nil {
		d.metrics.RecordNotificationFailure(ChannelEmail)
		d.logger.Error("割り当てメールの送信に失敗しました",
			slog.String("task_id", task.ID),
			slog.String("assignee", assignee.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	d.metrics.RecordNotificationSent(ChannelEmail)
	d.logger.Info("割り当てメールを送信しました",
		slog.String("task_id", task.ID),
		slog.String("assignee", assignee.ID),
	)
}

// NotifyStatusChange はステータス変更のプッシュ通知を配信する。
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, task *model.Task, oldStatus, newStatus model.TaskStatus, updatedBy string) {
	if d.push == nil {
		d.logger.Info("プッシュチャネルが未設定のためプッシュ通知をスキップします",
			slog.String("task_id", task.ID),
		)
		return
	}

	msg := PushMessage{
		Event:     PushEventStatusChange,
		TaskID:    task.ID,
		Title:     task.Title,
		Assignee:  task.Assignee,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
		UpdatedBy: updatedBy,
		SentAt:    time.Now(),
	}

	if err := d.push.Publish(ctx, msg); err != nil {
		d.metrics.RecordNotificationFailure(ChannelPush)
		d.logger.Error("ステータス変更通知の配信に失敗しました",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	d.metrics.RecordNotificationSent(ChannelPush)
	d.logger.Info("ステータス変更通知を配信しました",
		slog.String("task_id", task.ID),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(newStatus)),
	)
}

// NotifyDeadline は期限接近のプッシュ通知を配信する。
// 期限スキャナから呼び出される。配信失敗時はerrorを返し、
// スキャナ側でログに記録して処理を継続する。
func (d *Dispatcher) NotifyDeadline(ctx context.Context, task *model.Task) error {
	if d.push == nil {
		d.logger.Info("プッシュチャネルが未設定のため期限通知をスキップします",
			slog.String("task_id", task.ID),
		)
		return nil
	}

	msg := PushMessage{
		Event:    PushEventDeadlineAlert,
		TaskID:   task.ID,
		Title:    task.Title,
		Assignee: task.Assignee,
		Deadline: task.Deadline,
		SentAt:   time.Now(),
	}

	if err := d.push.Publish(ctx, msg); err != nil {
		d.metrics.RecordNotificationFailure(ChannelPush)
		return err
	}

	d.metrics.RecordNotificationSent(ChannelPush)
	return nil
}
