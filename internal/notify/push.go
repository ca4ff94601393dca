package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// プッシュ通知のイベント種別
const (
	PushEventStatusChange  = "status_change"
	PushEventDeadlineAlert = "deadline_alert"
)

// PushMessage はプッシュ/ブロードキャストチャネルに配信されるメッセージ。
// 購読側（管理画面やボット）はJSONとして受信する。
type PushMessage struct {
	Event     string    `json:"event"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Assignee  string    `json:"assignee"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	Deadline  time.Time `json:"deadline,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// PushPublisher はプッシュ通知配信のインターフェース。
type PushPublisher interface {
	// Publish はメッセージをブロードキャストチャネルに配信する。
	Publish(ctx context.Context, msg PushMessage) error
}

// RedisPushPublisher はRedis pub/subを使用したプッシュ通知パブリッシャー。
type RedisPushPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPushPublisher はRedisPushPublisherを生成する。
func NewRedisPushPublisher(client *redis.Client, channel string) *RedisPushPublisher {
	return &RedisPushPublisher{
		client:  client,
		channel: channel,
	}
}

// Publish はメッセージをJSONにエンコードしてRedisチャネルに配信する。
// 購読者の有無は関知しない（購読者ゼロでも成功として扱う）。
func (p *RedisPushPublisher) Publish(ctx context.Context, msg PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("プッシュメッセージの構築に失敗しました: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("プッシュチャネルへの配信に失敗しました: %w", err)
	}

	return nil
}

var _ PushPublisher = (*RedisPushPublisher)(nil)
