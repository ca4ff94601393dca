// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はタスクのタイトル・説明文をサニタイズし、
// クライアントアプリでの表示時のXSSリスクからユーザーを保護する。
// タスクの本文はプレーンテキストとして扱うため、許可タグなしの
// 厳格ポリシーですべてのHTMLタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストコンテンツのサニタイズ機能のインターフェースを定義する。
// タスクの保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
	// HTMLエンティティはデコードされ、前後の空白は除去される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayの厳格ポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 許可タグなしの厳格ポリシー（StrictPolicy）を使用し、
// script等の危険なタグはもちろん、すべてのマークアップを除去する。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	// StrictPolicyはタグ除去後にエンティティをエスケープするため、
	// プレーンテキストとして保存できるようデコードして戻す。
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
