// Package notify はタスクイベントの通知配信を提供する。
// メールリレー経由のメール通知とRedis pub/sub経由のプッシュ通知の2チャネルを持つ。
// 通知の失敗は呼び出し元のCRUD操作を失敗させない（ログに記録するのみ）。
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// EmailSender はメール送信のインターフェース。
type EmailSender interface {
	// Send は指定の宛先にメールを送信する。
	Send(ctx context.Context, to, subject, body string) error
}

// EmailRelayClient はHTTPメールリレーAPIのクライアント。
// SESのようなマネージドメールサービスのリレーエンドポイントを想定している。
type EmailRelayClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	sender     string
}

// NewEmailRelayClient はEmailRelayClientの新しいインスタンスを生成する。
func NewEmailRelayClient(httpClient *http.Client, logger *slog.Logger, endpoint, sender string) *EmailRelayClient {
	return &EmailRelayClient{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		sender:     sender,
	}
}

// emailMessage はメールリレーAPIのリクエストボディ。
type emailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send は指定の宛先にメールを送信する。
func (c *EmailRelayClient) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(emailMessage{
		From:    c.sender,
		To:      to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("メールリクエストの構築に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("メールリレーの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("メールリレーがステータス %d を返しました", resp.StatusCode)
	}

	return nil
}

var _ EmailSender = (*EmailRelayClient)(nil)
