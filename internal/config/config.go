package config

import (
	"log/slog"
	"time"

	"github.com/shouni/go-utils/envutil"
)

const (
	DefaultModel       = "gemini-2.0-flash-exp"
	DefaultImageModel  = "imagen-3.0-generate-001"
	DefaultLocationID  = "asia-northeast1"
	DefaultVoicevoxURL = "https://deprecatedapis.tts.quest/v2/voicevox/audio/"
	// DefaultHTTPTimeout 音声合成 API と Slack 通知の応答を考慮したタイムアウト
	DefaultHTTPTimeout = 60 * time.Second
	ShutdownTimeout    = 15 * time.Second

	// MaxAttempts と RetryBackoff はテキスト・画像生成で共通の固定値です。
	MaxAttempts  = 3
	RetryBackoff = 3 * time.Second
)

// Config は環境変数から読み込まれたアプリケーションの全設定を保持します。
// 起動時に一度だけ読み込み、各コンポーネントへ注入します。
type Config struct {
	ServiceURL string
	Port       string

	// Vertex AI
	ProjectID   string
	LocationID  string
	GeminiModel string // 物語・題材生成用モデル
	ImageModel  string // 挿絵生成用モデル

	// VOICEVOX (音声合成)
	VoicevoxURL    string
	VoicevoxAPIKey string

	SlackWebhookURL string

	// ImageRateInterval は挿絵生成リクエストの最小間隔です。0 の場合は制限しません。
	ImageRateInterval time.Duration
	ShutdownTimeout   time.Duration
}

// LoadConfig は環境変数から設定を読み込み、Config 構造体を生成します。
func LoadConfig() *Config {
	return &Config{
		ServiceURL:        envutil.GetEnv("SERVICE_URL", "http://localhost:8080"),
		Port:              envutil.GetEnv("PORT", "8080"),
		ProjectID:         envutil.GetEnv("PROJECT_ID", ""),
		LocationID:        envutil.GetEnv("LOCATION", DefaultLocationID),
		GeminiModel:       envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		ImageModel:        envutil.GetEnv("IMAGE_MODEL", DefaultImageModel),
		VoicevoxURL:       envutil.GetEnv("VOICEVOX_URL", DefaultVoicevoxURL),
		VoicevoxAPIKey:    envutil.GetEnv("VOICEVOX_API_KEY", ""),
		SlackWebhookURL:   envutil.GetEnv("SLACK_WEBHOOK_URL", ""),
		ImageRateInterval: parseDuration("IMAGE_RATE_INTERVAL", envutil.GetEnv("IMAGE_RATE_INTERVAL", "0s")),
		ShutdownTimeout:   ShutdownTimeout,
	}
}

func parseDuration(key, raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("不正な時間指定のため 0 として扱います", "key", key, "value", raw)
		return 0
	}
	return d
}
