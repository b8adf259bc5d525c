package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"picture-book-api/internal/domain"

	"google.golang.org/genai"
)

const (
	// systemInstruction は物語・題材生成で共通のペルソナです。
	systemInstruction = "You are a professional picture book creator with 20 years of experience. " +
		"You specialize in creating illustration-style picture books targeted at children ages 3 to 12. " +
		"A characteristic of your picture books is the inclusion of lessons and morals."

	defaultTopP            = 0.95
	defaultMaxOutputTokens = 8192
	imageMIMEType          = "image/jpeg"
	imageAspectRatio       = "1:1"
)

// --- インターフェース定義 ---

// TextRequest は1回のテキスト生成に必要な入力です。
type TextRequest struct {
	Prompt      string
	Temperature float32
	Schema      *genai.Schema
}

// TextModel は JSON 形式のテキストを1回だけ生成します。再試行は呼び出し側の責務です。
type TextModel interface {
	GenerateJSON(ctx context.Context, req TextRequest) (string, error)
}

// ImageModel は画像を1枚だけ生成します。
// 画像が返らなかった場合は domain.ErrSafetyRejected を返します。
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// contentGenerator と imageGenerator は *genai.Models の必要な部分だけを切り出したものです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type imageGenerator interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// --- 具象アダプター ---

// GeminiAdapter は Vertex AI 上の Gemini と Imagen を呼び出します。
type GeminiAdapter struct {
	text       contentGenerator
	images     imageGenerator
	textModel  string
	imageModel string
}

// NewGeminiAdapter は生成済みの genai クライアントからアダプターを作成します。
func NewGeminiAdapter(client *genai.Client, textModel, imageModel string) (*GeminiAdapter, error) {
	if client == nil {
		return nil, errors.New("genai client is nil")
	}
	return newGeminiAdapter(client.Models, client.Models, textModel, imageModel), nil
}

func newGeminiAdapter(text contentGenerator, images imageGenerator, textModel, imageModel string) *GeminiAdapter {
	return &GeminiAdapter{
		text:       text,
		images:     images,
		textModel:  textModel,
		imageModel: imageModel,
	}
}

// GenerateJSON はスキーマに沿った JSON 文字列を生成します。
func (a *GeminiAdapter) GenerateJSON(ctx context.Context, req TextRequest) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	resp, err := a.text.GenerateContent(ctx, a.textModel, contents, textConfig(req))
	if err != nil {
		return "", classifyError("gemini", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response from model %s", a.textModel)
	}
	return text, nil
}

// GenerateImage は JPEG 画像のバイト列を返します。
func (a *GeminiAdapter) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := a.images.GenerateImages(ctx, a.imageModel, prompt, imageConfig())
	if err != nil {
		return nil, classifyError("imagen", err)
	}
	return firstImage(resp)
}

func textConfig(req TextRequest) *genai.GenerateContentConfig {
	threshold := genai.HarmBlockThresholdBlockLowAndAbove
	return &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(req.Temperature),
		TopP:               genai.Ptr[float32](defaultTopP),
		MaxOutputTokens:    defaultMaxOutputTokens,
		ResponseModalities: []string{"TEXT"},
		ResponseMIMEType:   "application/json",
		ResponseSchema:     req.Schema,
		SystemInstruction:  genai.NewContentFromText(systemInstruction, genai.RoleUser),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: threshold},
			{Category: genai.HarmCategoryDangerousContent, Threshold: threshold},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: threshold},
			{Category: genai.HarmCategoryHarassment, Threshold: threshold},
		},
	}
}

func imageConfig() *genai.GenerateImagesConfig {
	return &genai.GenerateImagesConfig{
		NumberOfImages:    1,
		AspectRatio:       imageAspectRatio,
		Language:          genai.ImagePromptLanguageJa,
		IncludeRAIReason:  false,
		OutputMIMEType:    imageMIMEType,
		SafetyFilterLevel: genai.SafetyFilterLevelBlockLowAndAbove,
		PersonGeneration:  genai.PersonGenerationAllowAll,
	}
}

// firstImage は応答の先頭画像を取り出します。
// セーフティフィルタで除外された場合、Imagen はエラーではなく空の結果を返します。
func firstImage(resp *genai.GenerateImagesResponse) ([]byte, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("imagen: no image returned: %w", domain.ErrSafetyRejected)
	}
	img := resp.GeneratedImages[0]
	if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("imagen: empty image returned: %w", domain.ErrSafetyRejected)
	}
	return img.Image.ImageBytes, nil
}

// classifyError は SDK のエラーをドメインのエラーに対応付けます。
func classifyError(name string, err error) error {
	if isResourceExhausted(err) {
		return fmt.Errorf("%s: %w: %w", name, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}

func isResourceExhausted(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}
