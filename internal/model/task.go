// Package model はドメインモデルを定義する。
package model

import "time"

// Task は現場チームの作業タスクを表す。
type Task struct {
	ID          string
	Title       string
	Description string     // サニタイズ済みテキスト
	Assignee    string     // IdP上のユーザーID
	Status      TaskStatus
	Deadline    time.Time
	// DeadlineNotifiedAt は期限接近アラートの送信済みマーカー。
	// nilの場合は未通知。スキャナが通知前にアトミックに刻印する。
	DeadlineNotifiedAt *time.Time
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TaskStatus はタスクの進行状態を表す。
type TaskStatus string

const (
	// TaskStatusNew は未着手の状態。作成直後のタスクは必ずこの状態になる。
	TaskStatusNew TaskStatus = "New"
	// TaskStatusInProgress は作業中の状態。
	TaskStatusInProgress TaskStatus = "InProgress"
	// TaskStatusCompleted は完了した状態。
	TaskStatusCompleted TaskStatus = "Completed"
)

// ValidTaskStatus はstatusが定義済みの3値のいずれかであるかを返す。
// 状態遷移の順序は強制しない（Completed→Newも許可される）。
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
