package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"picture-book-api/internal/domain"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-notifier/pkg/slack"
)

// --- インターフェース定義 ---

// Notifier は絵本生成の完了・失敗を外部へ知らせます。
type Notifier interface {
	Notify(ctx context.Context, req domain.NotificationRequest) error
	NotifyError(ctx context.Context, errDetail error, req domain.NotificationRequest) error
}

// --- 具象アダプター ---

type SlackAdapter struct {
	slackClient *slack.Client
}

// NewSlackAdapter は Webhook URL が空の場合、何も送信しないアダプターを返します。
func NewSlackAdapter(httpClient httpkit.Requester, webhookURL string) (*SlackAdapter, error) {
	if webhookURL == "" {
		return &SlackAdapter{}, nil
	}
	client, err := slack.NewClient(httpClient, webhookURL)
	if err != nil {
		return nil, fmt.Errorf("Slackクライアントの初期化に失敗しました: %w", err)
	}

	return &SlackAdapter{slackClient: client}, nil
}

// Notify は絵本の生成完了を通知します。
func (a *SlackAdapter) Notify(ctx context.Context, req domain.NotificationRequest) error {
	if a.slackClient == nil {
		slog.Info("Slackクライアントが初期化されていないため、通知をスキップします。", "route", req.Route)
		return nil
	}

	icon := "📖"
	if req.Route == domain.RouteSelectMainTheme {
		icon = "🗺️"
	}

	title := fmt.Sprintf("%s 絵本の生成が完了しました", icon)
	content := buildSlackContent(req)

	if err := a.slackClient.SendTextWithHeader(ctx, title, content); err != nil {
		return fmt.Errorf("Slackへの投稿に失敗しました: %w", err)
	}

	slog.Info("Slack に完了通知を送信しました。", "route", req.Route, "title", req.TargetTitle)
	return nil
}

// NotifyError エラー詳細とリクエスト条件を含むSlackエラー通知の送信。
func (a *SlackAdapter) NotifyError(ctx context.Context, errDetail error, req domain.NotificationRequest) error {
	if a.slackClient == nil {
		slog.Info("Slackクライアントが初期化されていないため、エラー通知をスキップします。", "error", errDetail)
		return nil
	}

	title := "❌ 絵本の生成中にエラーが発生しました"
	content := buildSlackErrorContent(errDetail, req)

	if err := a.slackClient.SendTextWithHeader(ctx, title, content); err != nil {
		return fmt.Errorf("Slackへのエラー通知に失敗しました: %w", err)
	}

	slog.Info("Slack にエラー通知を送信しました。", "error", errDetail)
	return nil
}

func buildSlackContent(req domain.NotificationRequest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*タイトル:* `%s`\n", orNotAvailable(req.TargetTitle)))
	sb.WriteString(fmt.Sprintf("*エンドポイント:* `%s`\n", req.Route))
	if req.SceneCount > 0 {
		sb.WriteString(fmt.Sprintf("*シーン数:* %d\n", req.SceneCount))
	}
	if req.Summary != "" {
		sb.WriteString(fmt.Sprintf("*条件:* %s\n", req.Summary))
	}
	return sb.String()
}

func buildSlackErrorContent(errDetail error, req domain.NotificationRequest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*エンドポイント:* `%s`\n", req.Route))
	if req.Summary != "" {
		sb.WriteString(fmt.Sprintf("*条件:* %s\n", req.Summary))
	}
	sb.WriteString("\n")

	// エラー詳細をコードブロックで囲み、長いメッセージでも読みやすくします。
	sb.WriteString("*エラー内容:*\n")
	sb.WriteString(fmt.Sprintf("```\n%v\n```\n", errDetail))
	return sb.String()
}

func orNotAvailable(s string) string {
	if s == "" {
		return domain.CategoryNotAvailable
	}
	return s
}
