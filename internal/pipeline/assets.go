package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"picture-book-api/internal/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// runImageStep は全シーンの挿絵を並列に生成します。
func (p *StoryPipeline) runImageStep(ctx context.Context, scenes []domain.Scene) ([]string, error) {
	slog.InfoContext(ctx, "Step: Image generation", "scenes", len(scenes))

	// レートリミットの設定。interval が 0 なら制限しません。
	var limiter *rate.Limiter
	if p.imageInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(p.imageInterval), 2)
	}

	return fanOut(ctx, scenes, limiter, "image", func(ctx context.Context, s domain.Scene) (string, error) {
		return p.images.Generate(ctx, s.ImagenPrompt)
	})
}

// runAudioStep は全シーンの読み上げ音声を並列に生成します。
func (p *StoryPipeline) runAudioStep(ctx context.Context, scenes []domain.Scene) ([]string, error) {
	slog.InfoContext(ctx, "Step: Audio generation", "scenes", len(scenes))

	return fanOut(ctx, scenes, nil, "audio", func(ctx context.Context, s domain.Scene) (string, error) {
		return p.audio.Generate(ctx, s.Text)
	})
}

// fanOut はシーンごとに gen を並列実行し、結果を入力と同じ順序で返します。
// 1件でも失敗すると残りの処理はキャンセルされます。
func fanOut(
	ctx context.Context,
	scenes []domain.Scene,
	limiter *rate.Limiter,
	kind string,
	gen func(ctx context.Context, s domain.Scene) (string, error),
) ([]string, error) {
	results := make([]string, len(scenes))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, scene := range scenes {
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					return err
				}
			}

			out, err := gen(egCtx, scene)
			if err != nil {
				return fmt.Errorf("scene %d %s generation failed: %w", i+1, kind, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
