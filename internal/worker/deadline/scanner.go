// Package deadline はタスク期限の定期スキャン処理を提供する。
// 期限が接近した未完了タスクを検出し、期限アラート通知を送信する。
package deadline

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/repository"
)

// DeadlineNotifier は期限アラート通知の送信インターフェース。
type DeadlineNotifier interface {
	// NotifyDeadline は指定タスクの期限アラートを送信する。
	NotifyDeadline(ctx context.Context, task *model.Task) error
}

// ScanMetrics はスキャンメトリクスの記録インターフェース。
type ScanMetrics interface {
	RecordScanLatency(duration time.Duration)
	RecordDeadlineAlerts(count int)
}

// noopScanMetrics はメトリクス未設定時のダミー実装。
type noopScanMetrics struct{}

func (noopScanMetrics) RecordScanLatency(time.Duration) {}
func (noopScanMetrics) RecordDeadlineAlerts(int)        {}

// Scanner はタスク期限の定期スキャナー。
// ティッカーで周期実行し、期限がlookahead以内に迫った未完了タスクを検出して
// アラートを送信する。送信前にdeadline_notified_atマーカーを条件付きUPDATEで
// 刻印するため、複数インスタンスが同時に走っても同一タスクへの重複送信は起きない。
type Scanner struct {
	taskRepo  repository.TaskRepository
	notifier  DeadlineNotifier
	logger    *slog.Logger
	metrics   ScanMetrics
	lookahead time.Duration
}

// NewScanner はScannerの新しいインスタンスを生成する。
// lookaheadが0以下の場合はデフォルト値24時間を使用する。metricsはnilを許容する。
func NewScanner(
	taskRepo repository.TaskRepository,
	notifier DeadlineNotifier,
	logger *slog.Logger,
	metrics ScanMetrics,
	lookahead time.Duration,
) *Scanner {
	if lookahead <= 0 {
		lookahead = 24 * time.Hour
	}
	if metrics == nil {
		metrics = noopScanMetrics{}
	}
	return &Scanner{
		taskRepo:  taskRepo,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
		lookahead: lookahead,
	}
}

// Start は指定間隔のティッカーでスキャナーを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scanner) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("期限スキャナーを開始しました",
		slog.Duration("interval", interval),
		slog.Duration("lookahead", s.lookahead),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("期限スキャンの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("期限スキャナーを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("期限スキャンの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は期限スキャンを1回実行する。
// 期限が現在時刻からlookahead以内で、未完了かつ未通知のタスクを対象とする。
// 通知の失敗はログに記録して次のタスクへ進む。失敗したタスクのマーカーは
// 刻印済みのため再送されない（at-most-once）。
func (s *Scanner) RunOnce(ctx context.Context) error {
	start := time.Now()

	tasks, err := s.taskRepo.ListDeadlineCandidates(ctx, start.Add(s.lookahead))
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		s.logger.Info("期限が接近したタスクはありません")
		s.metrics.RecordScanLatency(time.Since(start))
		return nil
	}

	s.logger.Info("期限スキャンを開始します",
		slog.Int("candidate_count", len(tasks)),
	)

	sent := 0
	for _, task := range tasks {
		// 送信マーカーを先に刻印する。別インスタンスが刻印済みならスキップ
		claimed, err := s.taskRepo.ClaimDeadlineNotice(ctx, task.ID, time.Now())
		if err != nil {
			s.logger.Error("送信マーカーの刻印に失敗しました",
				slog.String("task_id", task.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !claimed {
			continue
		}

		if err := s.notifier.NotifyDeadline(ctx, task); err != nil {
			s.logger.Error("期限アラートの送信に失敗しました",
				slog.String("task_id", task.ID),
				slog.String("assignee", task.Assignee),
				slog.String("error", err.Error()),
			)
			continue
		}

		sent++
	}

	duration := time.Since(start)
	s.metrics.RecordScanLatency(duration)
	s.metrics.RecordDeadlineAlerts(sent)

	s.logger.Info("期限スキャンが完了しました",
		slog.Int("candidate_count", len(tasks)),
		slog.Int("sent_count", sent),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
