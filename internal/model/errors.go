// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeTaskNotFound     = "TASK_NOT_FOUND"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeInvalidDeadline  = "INVALID_DEADLINE"
	ErrCodeAssigneeNotFound = "ASSIGNEE_NOT_FOUND"
	ErrCodeAssigneeNoEmail  = "ASSIGNEE_NO_EMAIL"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeDirectoryError   = "DIRECTORY_ERROR"
)

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewForbiddenError は権限違反エラーを生成する。
// reasonには違反内容（admin専用操作、他人のタスク等）を指定する。
func NewForbiddenError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この操作を行う権限がありません: %s", reason),
		Category: "auth",
		Action:   "管理者に権限の付与を依頼してください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidStatusError は無効なステータスエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには New、InProgress、Completed のいずれかを指定してください。",
	}
}

// NewInvalidDeadlineError は無効な期限エラーを生成する。
func NewInvalidDeadlineError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDeadline,
		Message:  fmt.Sprintf("無効な期限です: %s", reason),
		Category: "validation",
		Action:   "期限はRFC 3339形式の日時で指定してください。",
	}
}

// NewAssigneeNotFoundError は担当者未検出エラーを生成する。
// タスクの担当者はIdPに実在するユーザーでなければならない。
func NewAssigneeNotFoundError(assignee string) *APIError {
	return &APIError{
		Code:     ErrCodeAssigneeNotFound,
		Message:  fmt.Sprintf("指定された担当者が見つかりません: %s", assignee),
		Category: "validation",
		Action:   "ユーザー一覧から実在する担当者を選択してください。",
	}
}

// NewAssigneeNoEmailError は担当者のメールアドレス未登録エラーを生成する。
func NewAssigneeNoEmailError(assignee string) *APIError {
	return &APIError{
		Code:     ErrCodeAssigneeNoEmail,
		Message:  fmt.Sprintf("担当者にメールアドレスが登録されていません: %s", assignee),
		Category: "validation",
		Action:   "担当者のメールアドレスをIdPに登録してから割り当ててください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewDirectoryError はIdPディレクトリAPIの呼び出し失敗エラーを生成する。
func NewDirectoryError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeDirectoryError,
		Message:  fmt.Sprintf("ユーザーディレクトリへの問い合わせに失敗しました: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
