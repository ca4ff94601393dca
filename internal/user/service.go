// Package user はユーザー管理のドメインロジックを提供する。
// ユーザーデータの所有者はIdPであり、本サービスはディレクトリAPIへの
// 認可付きの窓口として機能する。
package user

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/hitoshi/taskhub/internal/model"
)

// Directory はIdPユーザーディレクトリへの操作インターフェース。
type Directory interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, username, email, temporaryPassword string) (*model.User, error)
}

// Service はユーザー管理のサービス層。
// 一覧と作成はadmin専用。作成されるユーザーは必ずmemberグループに属する。
type Service struct {
	directory Directory
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(directory Directory, logger *slog.Logger) *Service {
	return &Service{
		directory: directory,
		logger:    logger,
	}
}

// CreateUserInput はユーザー作成の入力を表す。
type CreateUserInput struct {
	Username          string
	Email             string
	TemporaryPassword string
}

// ListUsers は全ユーザーの一覧を返す。admin専用。
// タスク作成時の担当者選択に使用される。
func (s *Service) ListUsers(ctx context.Context, p *model.Principal) ([]*model.User, error) {
	if !p.IsAdmin() {
		return nil, model.NewForbiddenError("ユーザー一覧の取得はadmin専用です")
	}

	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, model.NewDirectoryError(err.Error())
	}
	return users, nil
}

// GetUser は指定IDのユーザーを返す。admin専用。
func (s *Service) GetUser(ctx context.Context, p *model.Principal, id string) (*model.User, error) {
	if !p.IsAdmin() {
		return nil, model.NewForbiddenError("ユーザー情報の取得はadmin専用です")
	}

	u, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return nil, model.NewDirectoryError(err.Error())
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return u, nil
}

// CreateUser は新規ユーザーをmemberグループで作成する。admin専用。
// メールアドレスは割り当て通知の宛先になるため必須。
func (s *Service) CreateUser(ctx context.Context, p *model.Principal, in CreateUserInput) (*model.User, error) {
	if !p.IsAdmin() {
		return nil, model.NewForbiddenError("ユーザー作成はadmin専用です")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, model.NewInvalidRequestError("ユーザー名は必須です")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, model.NewInvalidRequestError("メールアドレスは必須です")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, model.NewInvalidRequestError("メールアドレスの形式が不正です")
	}

	created, err := s.directory.CreateUser(ctx, username, email, in.TemporaryPassword)
	if err != nil {
		return nil, model.NewDirectoryError(err.Error())
	}

	s.logger.Info("ユーザーを作成しました",
		slog.String("user_id", created.ID),
		slog.String("username", created.Username),
		slog.String("created_by", p.Username),
	)
	return created, nil
}
