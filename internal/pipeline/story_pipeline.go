package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"picture-book-api/internal/adapters"
	"picture-book-api/internal/domain"
	"picture-book-api/internal/generator"
	"picture-book-api/internal/prompts"

	"google.golang.org/genai"
)

const (
	themeTemperature  = 1
	parentTemperature = 1
	childTemperature  = 0
)

// TextGenerator は再試行付きで JSON テキストを生成します。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float32, schema *genai.Schema) (string, error)
}

// AssetGenerator は入力文字列からシーン素材 (画像・音声) を Base64 文字列で生成します。
type AssetGenerator interface {
	Generate(ctx context.Context, input string) (string, error)
}

// StoryPipeline は題材提案と絵本生成の一連の流れを管理します。
type StoryPipeline struct {
	text     TextGenerator
	images   AssetGenerator
	audio    AssetGenerator
	prompts  prompts.PromptBuilder
	notifier adapters.Notifier

	// imageInterval は挿絵生成リクエストの最小間隔です。0 なら制限しません。
	imageInterval time.Duration
}

func NewStoryPipeline(
	text TextGenerator,
	images AssetGenerator,
	audio AssetGenerator,
	pb prompts.PromptBuilder,
	notifier adapters.Notifier,
	imageInterval time.Duration,
) *StoryPipeline {
	return &StoryPipeline{
		text:          text,
		images:        images,
		audio:         audio,
		prompts:       pb,
		notifier:      notifier,
		imageInterval: imageInterval,
	}
}

// SelectMainTheme は題材から絵本の舞台を6件提案します。
func (p *StoryPipeline) SelectMainTheme(ctx context.Context, req domain.ThemeRequest) (result *domain.StageSuggestions, err error) {
	note := domain.NotificationRequest{
		Route:   domain.RouteSelectMainTheme,
		Summary: fmt.Sprintf("mainTheme=%s", req.MainTheme),
	}
	defer func() {
		if err != nil {
			p.notifyError(ctx, err, note)
		}
	}()

	prompt, err := p.prompts.Build(prompts.ModeMainTheme, prompts.TemplateData{MainTheme: req.MainTheme})
	if err != nil {
		return nil, err
	}

	raw, err := p.text.Generate(ctx, prompt, themeTemperature, prompts.StageSchema())
	if err != nil {
		return nil, fmt.Errorf("theme generation failed: %w", err)
	}

	suggestions, err := generator.Decode[domain.StageSuggestions](raw)
	if err != nil {
		return nil, err
	}
	if suggestions.Stages, err = normalizeStages(suggestions.Stages); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "舞台の候補を生成しました", "main_theme", req.MainTheme, "stages", suggestions.Stages)
	p.notify(ctx, note)
	return suggestions, nil
}

// GenerateParentStory は保護者が指定した条件で絵本を生成します。
func (p *StoryPipeline) GenerateParentStory(ctx context.Context, req domain.ParentStoryRequest) (*domain.StoryDocument, error) {
	req = req.WithDefaults()
	return p.generateStory(ctx, storyJob{
		route:       domain.RouteStoryParent,
		mode:        prompts.ModeStoryParent,
		data:        prompts.ParentStoryData(req),
		temperature: parentTemperature,
		summary: fmt.Sprintf("subject=%s / stage=%s / genres=%s / duration=%g",
			req.Subject, req.Stage, req.Genres.Join(), req.Duration),
	})
}

// GenerateChildStory は子供向けの簡易な条件で絵本を生成します。
// 温度 0 で生成するため、同じ条件なら物語の揺らぎは小さくなります。
func (p *StoryPipeline) GenerateChildStory(ctx context.Context, req domain.ChildStoryRequest) (*domain.StoryDocument, error) {
	req = req.WithDefaults()
	return p.generateStory(ctx, storyJob{
		route:       domain.RouteStoryChild,
		mode:        prompts.ModeStoryChild,
		data:        prompts.ChildStoryData(req),
		temperature: childTemperature,
		summary: fmt.Sprintf("genres=%s / targetAge=%s / duration=%g",
			req.Genres.Join(), req.TargetAge, req.Duration),
	})
}

type storyJob struct {
	route       string
	mode        string
	data        prompts.TemplateData
	temperature float32
	summary     string
}

// generateStory は物語の生成から素材の付与までを実行します。
// いずれかの段階で失敗した場合、部分的な結果は返しません。
func (p *StoryPipeline) generateStory(ctx context.Context, job storyJob) (result *domain.StoryDocument, err error) {
	start := time.Now()
	note := domain.NotificationRequest{Route: job.route, Summary: job.summary}

	// 失敗時の通知を defer 文で一括管理します。
	defer func() {
		if err != nil {
			p.notifyError(ctx, err, note)
		}
	}()

	slog.InfoContext(ctx, "Story pipeline started", "route", job.route, "summary", job.summary)

	// --- Phase 1: Story ---
	prompt, err := p.prompts.Build(job.mode, job.data)
	if err != nil {
		return nil, err
	}
	raw, err := p.text.Generate(ctx, prompt, job.temperature, prompts.StorySchema())
	if err != nil {
		return nil, fmt.Errorf("story generation failed: %w", err)
	}
	doc, err := generator.Decode[domain.StoryDocument](raw)
	if err != nil {
		return nil, err
	}
	if err = validateStory(doc); err != nil {
		return nil, err
	}
	note.TargetTitle = doc.Title

	// --- Phase 2: Images ---
	images, err := p.runImageStep(ctx, doc.Scenes)
	if err != nil {
		return nil, fmt.Errorf("image step failed: %w", err)
	}

	// --- Phase 3: Audio ---
	audios, err := p.runAudioStep(ctx, doc.Scenes)
	if err != nil {
		return nil, fmt.Errorf("audio step failed: %w", err)
	}

	for i := range doc.Scenes {
		doc.Scenes[i].ImageStr = images[i]
		doc.Scenes[i].AudioStr = audios[i]
	}
	if !doc.IsComplete() {
		return nil, errors.New("story has scenes without image or audio")
	}

	note.SceneCount = len(doc.Scenes)
	slog.InfoContext(ctx, "Story pipeline completed",
		"route", job.route,
		"title", doc.Title,
		"scenes", len(doc.Scenes),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	p.notify(ctx, note)
	return doc, nil
}

// normalizeStages は空白のみの候補を除き、件数を prompts.StageCount に揃えます。
func normalizeStages(stages []string) ([]string, error) {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) < prompts.StageCount {
		return nil, fmt.Errorf("expected %d stages, got %d", prompts.StageCount, len(out))
	}
	return out[:prompts.StageCount], nil
}

// validateStory は素材生成に進む前に物語の形式を検証します。
func validateStory(doc *domain.StoryDocument) error {
	if len(doc.Scenes) == 0 {
		return errors.New("generated story has no scenes")
	}
	for i, s := range doc.Scenes {
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("scene %d has empty text", i+1)
		}
		if strings.TrimSpace(s.ImagenPrompt) == "" {
			return fmt.Errorf("scene %d has empty imagenPrompt", i+1)
		}
	}
	return nil
}
