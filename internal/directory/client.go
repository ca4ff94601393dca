// Package directory はIdPのユーザーディレクトリAPIのクライアントを提供する。
// ユーザー一覧の取得、担当者の実在検証、ユーザー作成に使用する。
// ユーザーデータの所有者はIdPであり、本システムは読み取り中心の利用者にすぎない。
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskhub/internal/model"
)

// Client はIdPユーザーディレクトリAPIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	token      string // 管理API用トークン。空の場合はヘッダーを付与しない
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, token string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		token:      token,
	}
}

// userPayload はディレクトリAPIのユーザー表現。
type userPayload struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
	Enabled  bool     `json:"enabled"`
	Status   string   `json:"status"`
}

// createUserRequest はユーザー作成リクエストのボディ。
type createUserRequest struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password,omitempty"`
	Group             string `json:"group"`
}

// ListUsers は全ユーザーの一覧を取得する。
func (c *Client) ListUsers(ctx context.Context) ([]*model.User, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ディレクトリAPIがステータス %d を返しました", status)
	}

	var payloads []userPayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("ユーザー一覧のパースに失敗しました: %w", err)
	}

	users := make([]*model.User, len(payloads))
	for i, p := range payloads {
		users[i] = toUser(p)
	}
	return users, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (c *Client) FindByID(ctx context.Context, id string) (*model.User, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/users/"+id, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("ディレクトリAPIがステータス %d を返しました", status)
	}

	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("ユーザー情報のパースに失敗しました: %w", err)
	}
	return toUser(p), nil
}

// CreateUser は新規ユーザーをmemberグループで作成する。
// temporaryPasswordが空の場合はIdP側で自動生成され、ウェルカムメールで通知される。
func (c *Client) CreateUser(ctx context.Context, username, email, temporaryPassword string) (*model.User, error) {
	reqBody, err := json.Marshal(createUserRequest{
		Username:          username,
		Email:             email,
		TemporaryPassword: temporaryPassword,
		Group:             model.GroupMember,
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザー作成リクエストの構築に失敗しました: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, "/users", reqBody)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("ディレクトリAPIがステータス %d を返しました", status)
	}

	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("作成ユーザーのパースに失敗しました: %w", err)
	}
	return toUser(p), nil
}

// do はディレクトリAPIへのHTTPリクエストを実行し、レスポンスボディとステータスを返す。
func (c *Client) do(ctx context.Context, method, path string, reqBody []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ディレクトリAPIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	return body, resp.StatusCode, nil
}

func toUser(p userPayload) *model.User {
	return &model.User{
		ID:       p.ID,
		Username: p.Username,
		Email:    p.Email,
		Groups:   p.Groups,
		Enabled:  p.Enabled,
		Status:   p.Status,
	}
}
