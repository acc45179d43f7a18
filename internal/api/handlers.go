// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "assetgraph/internal/errors"
	"assetgraph/internal/graph"
	"assetgraph/internal/loader"
	"assetgraph/internal/node"
	"assetgraph/internal/target"
	"assetgraph/internal/validation"
)

// Loaders is the slice of the graph runner the handlers use.
type Loaders interface {
	List() ([]*graph.Record, error)
	Get(id string) (*graph.Record, error)
	SetLoadPath(id string, t target.Target, p string) (*graph.Record, error)
	Evaluate(ctx context.Context, id string, t target.Target, sink graph.Sink) (graph.Result, error)
	Output(id string, t target.Target) (node.Groups, error)
	Loader(rec *graph.Record) *loader.Loader
}

type LoaderHandler struct {
	loaders Loaders
}

func NewLoaderHandler(loaders Loaders) *LoaderHandler {
	return &LoaderHandler{loaders: loaders}
}

// Register mounts the loader routes on mux.
func (h *LoaderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/loaders", h.List)
	mux.HandleFunc("GET /api/loaders/{id}", h.Get)
	mux.HandleFunc("PUT /api/loaders/{id}/path", h.SetPath)
	mux.HandleFunc("POST /api/loaders/{id}/evaluate", h.Evaluate)
}

type TargetView struct {
	Target       string `json:"target"`
	Override     bool   `json:"override"`
	LoadPath     string `json:"load_path"`
	FullLoadPath string `json:"full_load_path"`
	ID           string `json:"load_path_guid"`
	Published    bool   `json:"published"`
	Assets       int    `json:"assets"`
}

type LoaderView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Connections []node.Connection `json:"connections,omitempty"`
	Targets     []TargetView      `json:"targets"`
}

type SetPathRequest struct {
	Target string `json:"target"`
	Path   string `json:"path"`
}

func (r *SetPathRequest) Validate() error {
	if err := validation.Target(r.Target); err != nil {
		return err
	}
	return validation.LoadPath(r.Path)
}

type EvaluateResponse struct {
	Result graph.Result `json:"result"`
	Output node.Groups  `json:"output"`
}

type ErrorResponse struct {
	Error       *apperrors.Error `json:"error"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

func (h *LoaderHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.loaders.List()
	if err != nil {
		writeError(w, err, nil)
		return
	}

	views := make([]LoaderView, 0, len(recs))
	for _, rec := range recs {
		view, err := h.view(rec)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *LoaderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	rec, err := h.loaders.Get(id)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	view, err := h.view(rec)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *LoaderHandler) SetPath(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	var req SetPathRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		writeError(w, err, nil)
		return
	}

	rec, err := h.loaders.SetLoadPath(id, target.Target(req.Target), req.Path)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	view, err := h.view(rec)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *LoaderHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	t := target.Target(r.URL.Query().Get("target"))

	var out node.Groups
	sink := func(_ *graph.Record, _ target.Target, _ *node.Connection, groups node.Groups) {
		out = groups
	}

	res, err := h.loaders.Evaluate(r.Context(), id, t, sink)
	if err != nil {
		var suggestions []string
		if apperrors.IsType(err, apperrors.ErrorTypeMissingDirectory) {
			if rec, getErr := h.loaders.Get(id); getErr == nil {
				suggestions = h.loaders.Loader(rec).SuggestDirectories(t)
			}
		}
		writeError(w, err, suggestions)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{Result: res, Output: out})
}

func (h *LoaderHandler) view(rec *graph.Record) (LoaderView, error) {
	l := h.loaders.Loader(rec)
	view := LoaderView{
		ID:          rec.Data.ID,
		Name:        rec.Data.Name,
		Connections: rec.Connections,
	}
	for _, t := range rec.Settings.Targets() {
		out, err := h.loaders.Output(rec.Data.ID, t)
		if err != nil {
			return LoaderView{}, err
		}
		view.Targets = append(view.Targets, TargetView{
			Target:       t.String(),
			Override:     rec.Settings.Paths.HasOverride(t),
			LoadPath:     l.LoadPath(t),
			FullLoadPath: l.FullLoadPath(t),
			ID:           rec.Settings.IDs.Get(t),
			Published:    out != nil,
			Assets:       len(out[node.DefaultOutput]),
		})
	}
	return view, nil
}

// Health reports that the daemon is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error, suggestions []string) {
	e, ok := apperrors.As(err)
	if !ok {
		e = apperrors.Internal(err.Error())
	}
	writeJSON(w, apperrors.StatusCode(e), ErrorResponse{Error: e, Suggestions: suggestions})
}
