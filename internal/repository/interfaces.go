// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
)

// TaskRepository はタスクデータの永続化インターフェース。
// 単一レコードのcreate/update/deleteはストア側でアトミックに実行される前提。
type TaskRepository interface {
	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListAll は全タスクをcreated_at昇順で返す（admin向け）。
	ListAll(ctx context.Context) ([]*model.Task, error)

	// ListByAssignee は指定担当者のタスクをcreated_at昇順で返す（member向け）。
	ListByAssignee(ctx context.Context, assignee string) ([]*model.Task, error)

	// Update はタスクの可変フィールドを一括で上書き更新する。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。
	// 対象が存在しない場合もエラーにならない（呼び出し元が存在確認を行う）。
	Delete(ctx context.Context, id string) error

	// ListDeadlineCandidates は期限アラート対象のタスクを返す。
	// 未完了かつ deadline <= until かつ未通知（deadline_notified_at IS NULL）のタスクを
	// deadline昇順で取得する。
	ListDeadlineCandidates(ctx context.Context, until time.Time) ([]*model.Task, error)

	// ClaimDeadlineNotice は期限アラートの送信済みマーカーをアトミックに刻印する。
	// 既に刻印済みの場合はfalseを返す。重複実行・並行実行でも
	// 同一タスクへの刻印に成功するのは1回だけであることを保証する。
	ClaimDeadlineNotice(ctx context.Context, taskID string, notifiedAt time.Time) (bool, error)
}
