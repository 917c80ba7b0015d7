package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sagarc03/quire"
)

type createRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type"`
}

type createPersonalRequest struct {
	Name             string `json:"name" validate:"required"`
	Type             string `json:"type" validate:"required"`
	WorkspaceID      string `json:"workspace_id"`
	WorkspaceIDCamel string `json:"workspaceId"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required"`
}

type listResponse struct {
	Data       []quire.Record `json:"data"`
	Pagination quire.PageMeta `json:"pagination"`
}

// handleCreatePersonal accepts the workspace in the body under either spelling and
// falls back to the caller's personal workspace.
func (h *Handler) handleCreatePersonal(w http.ResponseWriter, r *http.Request) {
	var req createPersonalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	scope := personal(r)
	switch {
	case req.WorkspaceID != "":
		scope.WorkspaceID = req.WorkspaceID
	case req.WorkspaceIDCamel != "":
		scope.WorkspaceID = req.WorkspaceIDCamel
	}

	h.create(w, r, scope, req.Name, quire.FileType(req.Type), nil)
}

// handleCreate serves the typed create routes. A fixed type ignores the body's type and
// restricts creation to it; an empty fixed type takes the type from the body.
func (h *Handler) handleCreate(scopeOf scopeFunc, fixed quire.FileType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := decodeJSON(w, r, &req); err != nil {
			HandleError(w, r, err)
			return
		}

		t := quire.FileType(req.Type)
		var allowed []quire.FileType
		if fixed != "" {
			t = fixed
			allowed = []quire.FileType{fixed}
		}

		h.create(w, r, scopeOf(r), req.Name, t, allowed)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, scope quire.Scope, name string, t quire.FileType, allowed []quire.FileType) {
	rec, err := h.service.Create(r.Context(), quire.CreateRecord{
		Scope: scope,
		Name:  name,
		Type:  t,
		Types: allowed,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleList(scopeOf scopeFunc, fixed quire.FileType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		t := fixed
		if t == "" && q.Get("type") != "" {
			parsed, err := quire.ParseFileType(q.Get("type"))
			if err != nil {
				HandleError(w, r, err)
				return
			}
			t = parsed
		}

		page := quire.ParsePage(q.Get("pageStart"), q.Get("pageSize"))

		records, meta, err := h.service.List(r.Context(), scopeOf(r), t, page)
		if err != nil {
			HandleError(w, r, err)
			return
		}

		_ = WriteJSON(w, http.StatusOK, listResponse{Data: records, Pagination: meta})
	}
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	rec, err := h.service.Rename(r.Context(), inWorkspace(r), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, rec)
}

// handleReadContent writes structured content as JSON and anything else as stored.
func (h *Handler) handleReadContent(scopeOf scopeFunc, want quire.FileType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := h.service.ReadContent(r.Context(), scopeOf(r), chi.URLParam(r, "id"), want)
		if err != nil {
			HandleError(w, r, err)
			return
		}

		if content.IsStructured() {
			_ = WriteJSON(w, http.StatusOK, content.JSON)
			return
		}

		ct := content.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content.Raw)
	}
}

// handleWriteContent stores the raw request body. Note routes default to JSON, the generic
// route to octet-stream.
func (h *Handler) handleWriteContent(scopeOf scopeFunc, want quire.FileType) http.HandlerFunc {
	fallback := "application/octet-stream"
	if want == quire.TypeNote {
		fallback = quire.DefaultContentType
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			ct = fallback
		}

		body := http.MaxBytesReader(w, r.Body, h.config.MaxContentBytes)
		res, err := h.service.WriteContent(r.Context(), scopeOf(r), chi.URLParam(r, "id"), want, body, ct)
		if err != nil {
			HandleError(w, r, err)
			return
		}

		w.Header().Set("ETag", `"`+res.Etag+`"`)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleDelete(scopeOf scopeFunc, want quire.FileType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "id"), want); err != nil {
			HandleError(w, r, err)
			return
		}

		if want == quire.TypeNote {
			_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
			return
		}
		_ = WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
