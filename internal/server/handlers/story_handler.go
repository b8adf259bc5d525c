package handlers

import (
	"net/http"

	"picture-book-api/internal/domain"
)

// SelectMainTheme は題材から舞台の候補を返します。
func (h *Handler) SelectMainTheme(w http.ResponseWriter, r *http.Request) {
	var req domain.ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.story.SelectMainTheme(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GenerateStoryParent は保護者向けの条件で絵本を生成します。
func (h *Handler) GenerateStoryParent(w http.ResponseWriter, r *http.Request) {
	var req domain.ParentStoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.story.GenerateParentStory(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GenerateStoryChild は子供向けの条件で絵本を生成します。
func (h *Handler) GenerateStoryChild(w http.ResponseWriter, r *http.Request) {
	var req domain.ChildStoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.story.GenerateChildStory(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Healthz は死活監視用のエンドポイントです。
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
