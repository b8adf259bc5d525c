package config

import (
	"fmt"

	"github.com/shouni/netarmor/securenet"
)

// --- バリデーション ---

// ValidateEssentialConfig はアプリケーション実行に不可欠な設定を検証します。
func ValidateEssentialConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration error: config is nil")
	}

	if !IsSecureURL(cfg.ServiceURL) {
		return fmt.Errorf("security error: SERVICE_URL ('%s') must be HTTPS in production", cfg.ServiceURL)
	}

	if cfg.ProjectID == "" {
		return fmt.Errorf("configuration error: PROJECT_ID is not set")
	}

	if cfg.LocationID == "" {
		return fmt.Errorf("configuration error: LOCATION is not set")
	}

	if cfg.VoicevoxAPIKey == "" {
		return fmt.Errorf("configuration error: VOICEVOX_API_KEY is not set")
	}

	// API キーをクエリに載せるため、平文の送信先は許可しません。
	if !IsSecureURL(cfg.VoicevoxURL) {
		return fmt.Errorf("security error: VOICEVOX_URL ('%s') must be HTTPS", cfg.VoicevoxURL)
	}

	return nil
}

// IsSecureURL は指定された URL が HTTPS または localhost であるか判定します。
func IsSecureURL(rawURL string) bool {
	return securenet.IsSecureServiceURL(rawURL)
}
