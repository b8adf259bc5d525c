package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"picture-book-api/internal/builder"
	"picture-book-api/internal/domain"
	"picture-book-api/internal/server/handlers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStory struct{}

func (stubStory) SelectMainTheme(context.Context, domain.ThemeRequest) (*domain.StageSuggestions, error) {
	return &domain.StageSuggestions{Stages: []string{"a", "b", "c", "d", "e", "f"}}, nil
}

func (stubStory) GenerateParentStory(context.Context, domain.ParentStoryRequest) (*domain.StoryDocument, error) {
	return &domain.StoryDocument{Title: "parent"}, nil
}

func (stubStory) GenerateChildStory(context.Context, domain.ChildStoryRequest) (*domain.StoryDocument, error) {
	return &domain.StoryDocument{Title: "child"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h, err := handlers.NewHandler(stubStory{})
	require.NoError(t, err)
	return NewRouter(&builder.AppHandlers{Story: h})
}

func TestRouter(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	tests := []struct {
		method, path string
		want         int
		contains     string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{http.MethodPost, "/select-main-theme", http.StatusOK, `"stages"`},
		{http.MethodPost, "/generate-story-parent", http.StatusOK, `"parent"`},
		{http.MethodPost, "/generate-story-child", http.StatusOK, `"child"`},
		{http.MethodGet, "/generate-story-child", http.StatusMethodNotAllowed, ""},
		{http.MethodPost, "/unknown", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(""))
			require.NoError(t, err)

			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.contains != "" {
				buf := new(strings.Builder)
				_, _ = io.Copy(buf, resp.Body)
				assert.Contains(t, buf.String(), tt.contains)
			}
		})
	}
}

func TestServe_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: newTestRouter(t)}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, "http://localhost") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
