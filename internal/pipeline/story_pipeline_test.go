package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"picture-book-api/internal/domain"
	"picture-book-api/internal/prompts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// --- テスト用フェイク ---

type fakeText struct {
	out string
	err error

	prompt      string
	temperature float32
	schema      *genai.Schema
}

func (f *fakeText) Generate(_ context.Context, prompt string, temperature float32, schema *genai.Schema) (string, error) {
	f.prompt, f.temperature, f.schema = prompt, temperature, schema
	return f.out, f.err
}

// fakeAsset は入力に接頭辞を付けて返します。failOn に一致する入力では失敗し、
// emptyOn に一致する入力では空文字を返します。
type fakeAsset struct {
	prefix  string
	failOn  string
	emptyOn string

	mu     sync.Mutex
	inputs []string
}

func (f *fakeAsset) Generate(ctx context.Context, input string) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()

	switch input {
	case f.failOn:
		return "", fmt.Errorf("imagen: %w", domain.ErrExhaustedRetries)
	case f.emptyOn:
		return "", nil
	}
	return f.prefix + input, nil
}

type fakeNotifier struct {
	notified []domain.NotificationRequest
	failed   []domain.NotificationRequest
	errs     []error
}

func (f *fakeNotifier) Notify(_ context.Context, req domain.NotificationRequest) error {
	f.notified = append(f.notified, req)
	return nil
}

func (f *fakeNotifier) NotifyError(_ context.Context, err error, req domain.NotificationRequest) error {
	f.failed = append(f.failed, req)
	f.errs = append(f.errs, err)
	return nil
}

type fixture struct {
	text     *fakeText
	images   *fakeAsset
	audio    *fakeAsset
	notifier *fakeNotifier
	pipeline *StoryPipeline
}

func newFixture(t *testing.T, textOut string) *fixture {
	t.Helper()
	pb, err := prompts.NewTextPromptBuilder()
	require.NoError(t, err)

	f := &fixture{
		text:     &fakeText{out: textOut},
		images:   &fakeAsset{prefix: "img:"},
		audio:    &fakeAsset{prefix: "wav:"},
		notifier: &fakeNotifier{},
	}
	f.pipeline = NewStoryPipeline(f.text, f.images, f.audio, pb, f.notifier, 0)
	return f
}

func storyJSON(n int) string {
	scenes := make([]string, n)
	for i := range scenes {
		scenes[i] = fmt.Sprintf(`{"description":"d%d","text":"text-%d","imagenPrompt":"prompt-%d","order":%d}`, i, i, i, i+1)
	}
	return fmt.Sprintf(`{"title":"もりのぼうけん","scenes":[%s]}`, strings.Join(scenes, ","))
}

// --- SelectMainTheme ---

func TestSelectMainTheme(t *testing.T) {
	t.Run("6件の舞台を返す", func(t *testing.T) {
		f := newFixture(t, `{"stages":["a","b","c","d","e","f"]}`)

		got, err := f.pipeline.SelectMainTheme(context.Background(), domain.ThemeRequest{MainTheme: "うみ"})
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got.Stages)
		assert.Equal(t, float32(1), f.text.temperature)
		assert.Contains(t, f.text.prompt, "Theme: うみ")
		assert.NotNil(t, f.text.schema.Properties["stages"])
		require.Len(t, f.notifier.notified, 1)
		assert.Equal(t, domain.RouteSelectMainTheme, f.notifier.notified[0].Route)
	})

	t.Run("7件以上は6件に切り詰める", func(t *testing.T) {
		f := newFixture(t, `{"stages":["a","b","c","d","e","f","g"]}`)

		got, err := f.pipeline.SelectMainTheme(context.Background(), domain.ThemeRequest{})
		require.NoError(t, err)
		assert.Len(t, got.Stages, 6)
	})

	t.Run("空白を除いて6件未満ならエラー", func(t *testing.T) {
		f := newFixture(t, `{"stages":["a","b","  ","d","e","f"]}`)

		got, err := f.pipeline.SelectMainTheme(context.Background(), domain.ThemeRequest{})
		assert.Error(t, err)
		assert.Nil(t, got)
		assert.Len(t, f.notifier.failed, 1)
	})

	t.Run("テキスト生成の失敗", func(t *testing.T) {
		f := newFixture(t, "")
		f.text.err = fmt.Errorf("text: %w", domain.ErrExhaustedRetries)

		_, err := f.pipeline.SelectMainTheme(context.Background(), domain.ThemeRequest{})
		assert.ErrorIs(t, err, domain.ErrExhaustedRetries)
		assert.Empty(t, f.notifier.notified)
		assert.Len(t, f.notifier.failed, 1)
	})
}

// --- GenerateParentStory / GenerateChildStory ---

func TestGenerateParentStory(t *testing.T) {
	f := newFixture(t, storyJSON(4))

	doc, err := f.pipeline.GenerateParentStory(context.Background(), domain.ParentStoryRequest{
		Subject:  "友情",
		Genres:   domain.StringList{"冒険"},
		Duration: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "もりのぼうけん", doc.Title)
	require.Len(t, doc.Scenes, 4)
	for i, s := range doc.Scenes {
		assert.Equal(t, fmt.Sprintf("img:prompt-%d", i), s.ImageStr, "画像は同じ位置のシーンに付与されること")
		assert.Equal(t, fmt.Sprintf("wav:text-%d", i), s.AudioStr, "音声は同じ位置のシーンに付与されること")
	}
	assert.True(t, doc.IsComplete())

	assert.Equal(t, float32(1), f.text.temperature)
	assert.Contains(t, f.text.prompt, "Educational Theme: 友情")
	assert.Contains(t, f.text.prompt, "Total Word Count (Entire Story): 400")
	assert.Contains(t, f.text.prompt, "Protagonist Name: ランダム")

	require.Len(t, f.notifier.notified, 1)
	note := f.notifier.notified[0]
	assert.Equal(t, domain.RouteStoryParent, note.Route)
	assert.Equal(t, "もりのぼうけん", note.TargetTitle)
	assert.Equal(t, 4, note.SceneCount)
}

func TestGenerateChildStory(t *testing.T) {
	f := newFixture(t, storyJSON(5))

	doc, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{Duration: 2})
	require.NoError(t, err)

	assert.Len(t, doc.Scenes, 5)
	assert.Equal(t, float32(0), f.text.temperature)
	assert.Contains(t, f.text.prompt, "Total Word Count (Entire Story): 800")
	assert.Contains(t, f.text.prompt, "Genre(s): 動物")
	assert.Len(t, f.images.inputs, 5)
	assert.Len(t, f.audio.inputs, 5)
}

func TestGenerateChildStory_FractionalDuration(t *testing.T) {
	f := newFixture(t, storyJSON(2))

	_, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{Duration: 1.5})
	require.NoError(t, err)

	assert.Contains(t, f.text.prompt, "Total Word Count (Entire Story): 600")
	require.Len(t, f.notifier.notified, 1)
	assert.Contains(t, f.notifier.notified[0].Summary, "duration=1.5")
}

func TestGenerateStory_Failures(t *testing.T) {
	t.Run("1枚でも画像生成に失敗すると結果を返さない", func(t *testing.T) {
		f := newFixture(t, storyJSON(4))
		f.images.failOn = "prompt-2"

		doc, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{})
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, domain.ErrExhaustedRetries)
		assert.Empty(t, f.audio.inputs, "画像が揃わなければ音声生成に進まないこと")
		assert.Empty(t, f.notifier.notified)
		require.Len(t, f.notifier.failed, 1)
		assert.Equal(t, "もりのぼうけん", f.notifier.failed[0].TargetTitle)
	})

	t.Run("音声生成の失敗", func(t *testing.T) {
		f := newFixture(t, storyJSON(3))
		f.audio.failOn = "text-0"

		doc, err := f.pipeline.GenerateParentStory(context.Background(), domain.ParentStoryRequest{})
		assert.Nil(t, doc)
		assert.Error(t, err)
		assert.Len(t, f.notifier.failed, 1)
	})

	t.Run("素材が欠けたシーンがあれば結果を返さない", func(t *testing.T) {
		f := newFixture(t, storyJSON(3))
		f.audio.emptyOn = "text-1"

		doc, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{})
		assert.Nil(t, doc)
		assert.ErrorContains(t, err, "without image or audio")
		assert.Empty(t, f.notifier.notified)
		assert.Len(t, f.notifier.failed, 1)
	})

	t.Run("シーンが空", func(t *testing.T) {
		f := newFixture(t, `{"title":"t","scenes":[]}`)

		_, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{})
		assert.Error(t, err)
		assert.Empty(t, f.images.inputs)
		require.Len(t, f.notifier.failed, 1)
		assert.Equal(t, domain.CategoryNotAvailable, f.notifier.failed[0].TargetTitle)
	})

	t.Run("imagenPrompt が欠けたシーン", func(t *testing.T) {
		f := newFixture(t, `{"title":"t","scenes":[{"text":"a","imagenPrompt":"","order":1}]}`)

		_, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{})
		assert.ErrorContains(t, err, "imagenPrompt")
	})

	t.Run("JSON として解析できない", func(t *testing.T) {
		f := newFixture(t, "not json")

		_, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{})
		assert.Error(t, err)
	})

	t.Run("テキスト生成の失敗", func(t *testing.T) {
		f := newFixture(t, "")
		f.text.err = errors.New("permission denied")

		_, err := f.pipeline.GenerateParentStory(context.Background(), domain.ParentStoryRequest{})
		assert.ErrorContains(t, err, "permission denied")
		assert.Empty(t, f.images.inputs)
	})
}

func TestFanOut_RateLimited(t *testing.T) {
	f := newFixture(t, storyJSON(3))
	f.pipeline.imageInterval = 10 * time.Millisecond

	doc, err := f.pipeline.GenerateChildStory(context.Background(), domain.ChildStoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, "img:prompt-2", doc.Scenes[2].ImageStr)
}

func TestFanOut_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	limiter := rateLimiterForTest()
	_, err := fanOut(ctx, []domain.Scene{{}, {}, {}}, limiter, "image", func(ctx context.Context, s domain.Scene) (string, error) {
		return "x", nil
	})
	assert.Error(t, err)
}

func rateLimiterForTest() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Hour), 1)
}
