package httpadapter

import (
	"net/http"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

func (rt *Router) createCategory(w http.ResponseWriter, r *http.Request) {
	var spec domain.CategorySpec
	if !decodeBody(w, r, &spec) {
		return
	}

	cat, err := rt.categories.Create(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (rt *Router) listCategories(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	cats, err := rt.categories.ListAll(r.Context(), userID, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := rt.categories.CountAll(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": cats,
		"total":      total,
	})
}

func (rt *Router) getCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := rt.categories.Get(r.Context(), r.PathValue("id"), userIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if cat == nil {
		writeNotFound(w, "category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

type updateCategoryRequest struct {
	UserID      string  `json:"user_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (rt *Router) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cat, err := rt.categories.RenameOrUpdate(r.Context(), r.PathValue("id"), domain.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	}, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cat == nil {
		writeNotFound(w, "category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (rt *Router) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ok, err := rt.categories.Delete(r.Context(), r.PathValue("id"), userIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeNotFound(w, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type membershipRequest struct {
	UserID      string   `json:"user_id"`
	DocumentIDs []string `json:"document_ids"`
}

func (rt *Router) addCategoryDocuments(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_ids is required"})
		return
	}

	cat, err := rt.categories.AddDocuments(r.Context(), r.PathValue("id"), req.DocumentIDs, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cat == nil {
		writeNotFound(w, "category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (rt *Router) removeCategoryDocuments(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_ids is required"})
		return
	}

	cat, err := rt.categories.RemoveDocuments(r.Context(), r.PathValue("id"), req.DocumentIDs, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cat == nil {
		writeNotFound(w, "category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (rt *Router) listCategoryDocuments(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	docs, err := rt.categories.ListDocuments(r.Context(), r.PathValue("id"), userID, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) categorySummary(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	docLimit := queryInt(r, "doc_limit", 0)

	var newsOverride *string
	if r.URL.Query().Has("category_news") {
		news := r.URL.Query().Get("category_news")
		newsOverride = &news
	}

	summary, err := rt.categories.Summary(r.Context(), r.PathValue("id"), userID, docLimit, newsOverride)
	if err != nil {
		writeError(w, err)
		return
	}
	if summary == nil {
		writeNotFound(w, "category")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
