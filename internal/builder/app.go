package builder

import (
	"context"
	"fmt"

	"picture-book-api/internal/adapters"
	"picture-book-api/internal/config"
	"picture-book-api/internal/generator"
	"picture-book-api/internal/pipeline"
	"picture-book-api/internal/prompts"
	"picture-book-api/internal/retry"

	"github.com/shouni/go-http-kit/httpkit"
	"google.golang.org/genai"
)

// AppContext はアプリケーションの依存関係を保持します。
// 外部サービスのクライアントは起動時に一度だけ生成し、全リクエストで共有します。
type AppContext struct {
	Config   *config.Config
	Pipeline *pipeline.StoryPipeline
}

// Gateways は外部の生成APIへの接続口です。
type Gateways struct {
	Text   adapters.TextModel
	Image  adapters.ImageModel
	Speech adapters.SpeechSynthesizer
}

// BuildAppContext は外部サービスとの接続を確立し、依存関係を組み立てます。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	// 1. 基盤クライアントの初期化 (VOICEVOX と Slack で共有)
	httpClient := httpkit.New(config.DefaultHTTPTimeout)

	// 2. Vertex AI (Gemini / Imagen)
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.LocationID,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	gemini, err := adapters.NewGeminiAdapter(genaiClient, cfg.GeminiModel, cfg.ImageModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini adapter: %w", err)
	}

	// 3. 音声合成
	voicevox, err := adapters.NewVoicevoxAdapter(httpClient, cfg.VoicevoxURL, cfg.VoicevoxAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize VOICEVOX adapter: %w", err)
	}

	// 4. 通知
	slack, err := adapters.NewSlackAdapter(httpClient, cfg.SlackWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Slack adapter: %w", err)
	}

	// 5. パイプラインの構築
	storyPipeline, err := BuildStoryPipeline(cfg, Gateways{Text: gemini, Image: gemini, Speech: voicevox}, slack, retry.DefaultPolicy())
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:   cfg,
		Pipeline: storyPipeline,
	}, nil
}

// BuildStoryPipeline は生成器を組み立て、StoryPipeline を返します。
func BuildStoryPipeline(cfg *config.Config, gw Gateways, notifier adapters.Notifier, policy retry.Policy) (*pipeline.StoryPipeline, error) {
	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt builder: %w", err)
	}

	text := generator.NewTextGenerator(gw.Text, policy)
	images := generator.NewImageGenerator(gw.Image, text, pb, policy)
	audio := generator.NewAudioGenerator(gw.Speech)

	return pipeline.NewStoryPipeline(text, images, audio, pb, notifier, cfg.ImageRateInterval), nil
}
