// Package generator は外部の生成APIを再試行付きで呼び出し、
// 絵本の素材（テキスト・挿絵・音声）を作成します。
package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"picture-book-api/internal/adapters"
	"picture-book-api/internal/retry"

	"google.golang.org/genai"
)

// TextGenerator は JSON 形式のテキストを生成します。
// レート制限時のみ再試行し、セーフティ拒否は致命的なエラーとして扱います。
type TextGenerator struct {
	model  adapters.TextModel
	policy retry.Policy
}

func NewTextGenerator(model adapters.TextModel, policy retry.Policy) *TextGenerator {
	return &TextGenerator{model: model, policy: policy}
}

// Generate はスキーマに沿った JSON 文字列を返します。
func (g *TextGenerator) Generate(ctx context.Context, prompt string, temperature float32, schema *genai.Schema) (string, error) {
	req := adapters.TextRequest{
		Prompt:      prompt,
		Temperature: temperature,
		Schema:      schema,
	}
	return retry.Do(ctx, g.policy, "text", func(ctx context.Context) (string, error) {
		return g.model.GenerateJSON(ctx, req)
	}, nil)
}

// Decode は生成された JSON を T に変換します。
func Decode[T any](raw string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("生成結果のJSON解析に失敗しました: %w", err)
	}
	return &v, nil
}
