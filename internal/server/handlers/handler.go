package handlers

import (
	"context"
	"errors"

	"picture-book-api/internal/domain"
)

// StoryService は絵本生成のユースケースです。
type StoryService interface {
	SelectMainTheme(ctx context.Context, req domain.ThemeRequest) (*domain.StageSuggestions, error)
	GenerateParentStory(ctx context.Context, req domain.ParentStoryRequest) (*domain.StoryDocument, error)
	GenerateChildStory(ctx context.Context, req domain.ChildStoryRequest) (*domain.StoryDocument, error)
}

type Handler struct {
	story StoryService
}

// NewHandler は絵本生成の HTTP ハンドラーを初期化します。
func NewHandler(story StoryService) (*Handler, error) {
	if story == nil {
		return nil, errors.New("story service is nil")
	}
	return &Handler{story: story}, nil
}
