package pipeline

import (
	"context"
	"log/slog"

	"picture-book-api/internal/domain"
)

// notify は完了通知を送信します。通知自体の失敗は処理結果に影響させません。
func (p *StoryPipeline) notify(ctx context.Context, req domain.NotificationRequest) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, req); err != nil {
		slog.ErrorContext(ctx, "Notification failed", "error", err)
	}
}

func (p *StoryPipeline) notifyError(ctx context.Context, cause error, req domain.NotificationRequest) {
	if p.notifier == nil {
		return
	}
	if req.TargetTitle == "" {
		req.TargetTitle = domain.CategoryNotAvailable
	}
	// リクエストがキャンセルされていても失敗は通知します。
	if err := p.notifier.NotifyError(context.WithoutCancel(ctx), cause, req); err != nil {
		slog.ErrorContext(ctx, "Error notification failed", "error", err, "original_error", cause)
	}
}
