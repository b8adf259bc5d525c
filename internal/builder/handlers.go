package builder

import (
	"errors"
	"fmt"

	"picture-book-api/internal/server/handlers"
)

// AppHandlers は生成されたすべての HTTP ハンドラーを保持する構造体です。
// server パッケージはこの構造体を受け取ってルーティングを行います。
type AppHandlers struct {
	Story *handlers.Handler
}

// BuildHandlers は各ハンドラーの依存関係をすべて組み立て、AppHandlers 構造体を返します。
func BuildHandlers(appCtx *AppContext) (*AppHandlers, error) {
	if appCtx == nil || appCtx.Pipeline == nil {
		return nil, errors.New("story pipeline is not initialized")
	}

	storyHandler, err := handlers.NewHandler(appCtx.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("StoryHandlerの初期化に失敗しました: %w", err)
	}

	return &AppHandlers{
		Story: storyHandler,
	}, nil
}
