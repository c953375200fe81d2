package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/portfolio/internal/contact"
	"github.com/terra-clan/portfolio/internal/models"
	"github.com/terra-clan/portfolio/internal/render"
	"github.com/terra-clan/portfolio/internal/showcase"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// isSelectionError reports whether err came from an invalid filter or sort
func isSelectionError(err error) bool {
	return errors.Is(err, showcase.ErrUnknownDimension) ||
		errors.Is(err, showcase.ErrUnknownOption) ||
		errors.Is(err, showcase.ErrUnknownSort)
}

func respondSelectionError(w http.ResponseWriter, err error) {
	if isSelectionError(err) {
		respondError(w, http.StatusBadRequest, "invalid_selection", err.Error())
		return
	}
	slog.Error("failed to apply selection", "error", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "failed to apply selection")
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	if !report.Ready {
		respondJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Visitor state helpers

// stateOf returns the visitor's stored selection, or the default when the
// stored one no longer fits the catalog
func (s *Server) stateOf(v *models.Visitor) showcase.State {
	st := showcase.State{Filters: v.Filters.Normalize(), Sort: v.Sort}
	if st.Sort == "" {
		st.Sort = models.SortDefault
	}
	if err := s.pipeline.Validate(st); err != nil {
		slog.Debug("resetting stale visitor selection", "visitor", v.ID, "error", err)
		return showcase.DefaultState()
	}
	return st
}

// applyQuery applies category/complexity/technology/sort query parameters
func (s *Server) applyQuery(st showcase.State, q url.Values) (showcase.State, bool, error) {
	changed := false
	for _, dim := range models.Dimensions {
		if !q.Has(string(dim)) {
			continue
		}
		next, err := s.pipeline.Select(st, dim, q.Get(string(dim)))
		if err != nil {
			return st, false, err
		}
		changed = changed || next != st
		st = next
	}
	if q.Has("sort") {
		next, err := s.pipeline.WithSort(st, q.Get("sort"))
		if err != nil {
			return st, false, err
		}
		changed = changed || next != st
		st = next
	}
	return st, changed, nil
}

func (s *Server) saveState(ctx context.Context, v *models.Visitor, st showcase.State) error {
	v.Filters = st.Filters
	v.Sort = st.Sort
	if err := s.visitors.Save(ctx, v); err != nil {
		return fmt.Errorf("failed to save visitor state: %w", err)
	}
	return nil
}

func (s *Server) analyticsFor(ctx context.Context, id string) (models.Analytics, error) {
	v, err := s.visitors.Get(ctx, id)
	if err != nil {
		return models.Analytics{}, fmt.Errorf("failed to load visitor: %w", err)
	}
	total, err := s.visitors.TotalVisits(ctx)
	if err != nil {
		return models.Analytics{}, fmt.Errorf("failed to count visits: %w", err)
	}
	return models.NewAnalytics(v, total, s.now()), nil
}

// resolveViewID maps a raw id to a trackable view id
func (s *Server) resolveViewID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case models.ViewProjectsSection, models.ViewContactSubmit:
		return raw, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", false
	}
	p, ok := s.pipeline.Project(n)
	if !ok {
		return "", false
	}
	return p.ViewID(), true
}

// trackView adds viewID to the visitor's viewed set and records the first
// view of it as an event
func (s *Server) trackView(ctx context.Context, v *models.Visitor, viewID string) (bool, error) {
	added, err := s.visitors.TrackView(ctx, v.ID, viewID)
	if err != nil {
		return false, fmt.Errorf("failed to track view: %w", err)
	}
	if added && s.repo != nil {
		if err := s.repo.RecordView(ctx, v.ID, viewID, s.now().UTC()); err != nil {
			slog.Warn("failed to record view event", "error", err, "view", viewID)
		}
	}
	return added, nil
}

// Page handlers

// pageFor loads the visitor, applies and persists query selections, and
// builds the page around the resulting state
func (s *Server) pageFor(w http.ResponseWriter, r *http.Request) (render.Page, showcase.State, bool) {
	ctx := r.Context()
	v := VisitorFromContext(ctx)

	st, changed, err := s.applyQuery(s.stateOf(v), r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return render.Page{}, st, false
	}
	if changed {
		if err := s.saveState(ctx, v, st); err != nil {
			slog.Error("failed to persist selection", "error", err, "visitor", v.ID)
		}
	}

	page := render.Page{
		Owner:    s.site.Owner,
		Greeting: render.Greeting(s.site.Owner, s.now()),
		Theme:    v.Theme,
		Options:  s.pipeline.Options(),
	}

	if a, err := s.analyticsFor(ctx, v.ID); err == nil {
		page.Analytics = a
	} else {
		slog.Warn("failed to load analytics", "error", err, "visitor", v.ID)
		page.Analytics = models.NewAnalytics(v, 0, s.now())
	}

	if s.github != nil {
		page.GitHub = s.github.Snapshot(ctx)
	}

	return page, st, true
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, st, ok := s.pageFor(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	d := showcase.NewDispatcher(s.pipeline, st, render.SinkFor(s.renderer, &buf, page))
	if _, err := d.Load(); err != nil {
		slog.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("failed to write page", "error", err)
	}
}

func (s *Server) handleProjectsPartial(w http.ResponseWriter, r *http.Request) {
	page, st, ok := s.pageFor(w, r)
	if !ok {
		return
	}
	page.View = s.pipeline.Run(st)

	var buf bytes.Buffer
	if err := s.renderer.RenderProjects(&buf, page); err != nil {
		slog.Error("failed to render projects", "error", err)
		http.Error(w, "failed to render projects", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("failed to write projects", "error", err)
	}
}

func (s *Server) handleThemeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	theme := models.Theme(r.FormValue("theme"))
	if !theme.IsValid() {
		http.Error(w, "unknown theme", http.StatusBadRequest)
		return
	}

	v := VisitorFromContext(r.Context())
	v.Theme = theme
	if err := s.visitors.Save(r.Context(), v); err != nil {
		slog.Error("failed to save theme", "error", err, "visitor", v.ID)
		http.Error(w, "failed to save theme", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleViewForm(w http.ResponseWriter, r *http.Request) {
	viewID, ok := s.resolveViewID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "unknown view", http.StatusNotFound)
		return
	}

	v := VisitorFromContext(r.Context())
	if _, err := s.trackView(r.Context(), v, viewID); err != nil {
		slog.Error("failed to track view", "error", err, "visitor", v.ID)
		http.Error(w, "failed to track view", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/#projects", http.StatusSeeOther)
}

// Project handlers

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	// Query parameters override the stored selection for this request only
	st, _, err := s.applyQuery(s.stateOf(v), r.URL.Query())
	if err != nil {
		respondSelectionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state": st,
		"view":  s.pipeline.Run(st),
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "project id must be a number")
		return
	}

	p, ok := s.pipeline.Project(id)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "project not found")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"options":   s.pipeline.Options(),
		"sort_keys": models.SortKeys,
		"state":     s.stateOf(v),
	})
}

type selectionRequest struct {
	Dimension string  `json:"dimension,omitempty"`
	Value     string  `json:"value,omitempty"`
	Sort      *string `json:"sort,omitempty"`
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Dimension == "" && req.Sort == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "dimension or sort is required")
		return
	}

	ctx := r.Context()
	v := VisitorFromContext(ctx)
	d := showcase.NewDispatcher(s.pipeline, s.stateOf(v), nil)

	var (
		view showcase.View
		err  error
	)
	if req.Dimension != "" {
		if view, err = d.SelectFilter(models.Dimension(req.Dimension), req.Value); err != nil {
			respondSelectionError(w, err)
			return
		}
	}
	if req.Sort != nil {
		if view, err = d.SelectSort(*req.Sort); err != nil {
			respondSelectionError(w, err)
			return
		}
	}

	if err := s.saveState(ctx, v, d.State()); err != nil {
		slog.Error("failed to persist selection", "error", err, "visitor", v.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save selection")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state": d.State(),
		"view":  view,
	})
}

// View tracking

// flexibleID accepts a JSON string or number
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number")
	}
	*f = flexibleID(n.String())
	return nil
}

type viewRequest struct {
	ID flexibleID `json:"id"`
}

func (s *Server) handleTrackView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	viewID, ok := s.resolveViewID(string(req.ID))
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_view", "unknown view id")
		return
	}

	ctx := r.Context()
	v := VisitorFromContext(ctx)

	added, err := s.trackView(ctx, v, viewID)
	if err != nil {
		slog.Error("failed to track view", "error", err, "visitor", v.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to track view")
		return
	}

	a, err := s.analyticsFor(ctx, v.ID)
	if err != nil {
		slog.Error("failed to load analytics", "error", err, "visitor", v.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load analytics")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"added":     added,
		"analytics": a,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	a, err := s.analyticsFor(r.Context(), v.ID)
	if err != nil {
		slog.Error("failed to load analytics", "error", err, "visitor", v.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load analytics")
		return
	}

	respondJSON(w, http.StatusOK, a)
}

// Theme

type themeRequest struct {
	Theme models.Theme `json:"theme"`
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if !req.Theme.IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "theme must be light or dark")
		return
	}

	v := VisitorFromContext(r.Context())
	v.Theme = req.Theme
	if err := s.visitors.Save(r.Context(), v); err != nil {
		slog.Error("failed to save theme", "error", err, "visitor", v.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save theme")
		return
	}

	respondJSON(w, http.StatusOK, themeRequest{Theme: v.Theme})
}

// GitHub

func (s *Server) handleGitHub(w http.ResponseWriter, r *http.Request) {
	if s.github == nil {
		respondError(w, http.StatusServiceUnavailable, "github_unavailable", "github showcase is not configured")
		return
	}
	respondJSON(w, http.StatusOK, s.github.Snapshot(r.Context()))
}

// Contact

func decodeContact(r *http.Request) (models.ContactRequest, error) {
	var req models.ContactRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.PostFormValue("name")
	req.Email = r.PostFormValue("email")
	req.Subject = r.PostFormValue("subject")
	req.Message = r.PostFormValue("message")
	return req, nil
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	req, err := decodeContact(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	v := VisitorFromContext(r.Context())

	msg, err := s.contact.Submit(r.Context(), v.ID, req)
	if err != nil {
		if ve, ok := contact.AsValidationError(err); ok {
			respondJSON(w, http.StatusUnprocessableEntity, models.ContactResponse{
				Status:  "error",
				Message: contact.MessageFailure,
				Errors:  ve.Fields,
			})
			return
		}
		slog.Error("failed to submit contact form", "error", err, "visitor", v.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to send message")
		return
	}

	respondJSON(w, http.StatusCreated, models.ContactResponse{
		Status:  "success",
		Message: contact.MessageSuccess,
		ID:      msg.ID,
	})
}

// Admin handlers

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage is not configured")
		return
	}

	limit := 50 // default
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	messages, err := s.repo.ListContactMessages(r.Context(), limit, offset)
	if err != nil {
		slog.Error("failed to list contact messages", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list messages")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"total":    len(messages),
	})
}

func (s *Server) handleCountViews(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage is not configured")
		return
	}

	viewID, ok := s.resolveViewID(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_view", "unknown view id")
		return
	}

	count, err := s.repo.CountViews(r.Context(), viewID)
	if err != nil {
		slog.Error("failed to count views", "error", err, "view", viewID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to count views")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"view":  viewID,
		"count": count,
	})
}
