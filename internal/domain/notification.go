package domain

const CategoryNotAvailable = "N/A"

// 通知やログで処理の入口を識別するためのルート名です。
const (
	RouteSelectMainTheme = "select-main-theme"
	RouteStoryParent     = "generate-story-parent"
	RouteStoryChild      = "generate-story-child"
)

// NotificationRequest は Slack 等の通知コンポーネントで共有されるデータ構造です。
// 生成された絵本のメタデータを通知先に伝えるために使用します。
type NotificationRequest struct {
	// Route は処理を受け付けたエンドポイントです。(例: "generate-story-child")
	Route string `json:"route"`

	// TargetTitle は生成された絵本のタイトルです。未確定の場合は CategoryNotAvailable。
	TargetTitle string `json:"target_title"`

	// SceneCount は生成されたシーン数です。
	SceneCount int `json:"scene_count"`

	// Summary はリクエスト条件の要約です。(例: "genres=動物 / duration=3")
	Summary string `json:"summary"`
}
