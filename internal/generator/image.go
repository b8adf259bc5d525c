package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"picture-book-api/internal/adapters"
	"picture-book-api/internal/prompts"
	"picture-book-api/internal/retry"
)

// sanitizeTemperature は画像プロンプト書き換え時の温度です。
const sanitizeTemperature = 1

type sanitizeResponse struct {
	ImagenPrompt string `json:"imagen_prompt"`
}

// ImageGenerator は挿絵を生成し、Base64 文字列で返します。
// セーフティフィルタで拒否された場合はプロンプトから人物への言及を除いて再試行します。
type ImageGenerator struct {
	model   adapters.ImageModel
	text    *TextGenerator
	prompts prompts.PromptBuilder
	policy  retry.Policy
}

func NewImageGenerator(model adapters.ImageModel, text *TextGenerator, pb prompts.PromptBuilder, policy retry.Policy) *ImageGenerator {
	return &ImageGenerator{
		model:   model,
		text:    text,
		prompts: pb,
		policy:  policy,
	}
}

// Generate は prompt から JPEG 画像を生成します。
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	working := prompt

	img, err := retry.Do(ctx, g.policy, "image", func(ctx context.Context) ([]byte, error) {
		return g.model.GenerateImage(ctx, working)
	}, func(ctx context.Context, _ error) error {
		rewritten, err := g.sanitize(ctx, working)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "画像プロンプトを書き換えて再試行します", "before", working, "after", rewritten)
		working = rewritten
		return nil
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(img), nil
}

// sanitize は人物への言及を取り除いたプロンプトを生成します。
func (g *ImageGenerator) sanitize(ctx context.Context, current string) (string, error) {
	p, err := g.prompts.Build(prompts.ModeSanitizeImage, prompts.TemplateData{ImagenPrompt: current})
	if err != nil {
		return "", err
	}

	raw, err := g.text.Generate(ctx, p, sanitizeTemperature, prompts.SanitizeSchema())
	if err != nil {
		return "", fmt.Errorf("画像プロンプトの書き換えに失敗しました: %w", err)
	}

	res, err := Decode[sanitizeResponse](raw)
	if err != nil {
		return "", err
	}
	rewritten := strings.TrimSpace(res.ImagenPrompt)
	if rewritten == "" {
		return "", errors.New("書き換え後の画像プロンプトが空です")
	}
	return rewritten, nil
}
