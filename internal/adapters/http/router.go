package httpadapter

import (
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/avolkov/docstream/internal/config"
	"github.com/avolkov/docstream/internal/core/domain"
	"github.com/avolkov/docstream/internal/core/ports"
	"github.com/avolkov/docstream/internal/core/store"
	"github.com/avolkov/docstream/internal/infrastructure/inspect"
	"github.com/avolkov/docstream/internal/infrastructure/notify"
	"github.com/avolkov/docstream/internal/infrastructure/report"
)

// Router is the HTTP facade consumed by the product UI. It exposes the upload
// queue, document mutations and the notification feed.
type Router struct {
	cfg       config.Config
	manager   ports.UploadManager
	mutator   ports.DocumentMutator
	queue     *store.Store
	feed      *notify.Feed
	history   ports.UploadHistory
	inspector *inspect.PDFInspector
	metrics   http.Handler
	log       *slog.Logger
}

func NewRouter(
	cfg config.Config,
	manager ports.UploadManager,
	mutator ports.DocumentMutator,
	queue *store.Store,
	feed *notify.Feed,
	history ports.UploadHistory,
	metrics http.Handler,
	log *slog.Logger,
) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		cfg:       cfg,
		manager:   manager,
		mutator:   mutator,
		queue:     queue,
		feed:      feed,
		history:   history,
		inspector: inspect.NewPDFInspector(),
		metrics:   metrics,
		log:       log,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/uploads", rt.uploads)
	mux.HandleFunc("/v1/uploads/stats", rt.uploadStats)
	mux.HandleFunc("/v1/uploads/clear-completed", rt.clearCompleted)
	mux.HandleFunc("/v1/uploads/clear-all", rt.clearAll)
	mux.HandleFunc("/v1/uploads/report.xlsx", rt.uploadReport)
	mux.HandleFunc("/v1/uploads/", rt.uploadByID)
	mux.HandleFunc("/v1/documents/reprocess-batch", rt.reprocessBatch)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/notifications", rt.notifications)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics)
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler, rt.log)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.submitUploads(w, r)
	case http.MethodGet:
		rt.listUploads(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// submitUploads admits every file in the multipart form. A single file is a
// synchronous round trip returning the acceptance payload; several files
// settle independently and the response reports the final queue state.
func (rt *Router) submitUploads(w http.ResponseWriter, r *http.Request) {
	maxMemory := rt.cfg.MaxUploadBytes
	if maxMemory <= 0 {
		maxMemory = 10 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	uploads := make([]domain.FileUpload, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable multipart part"})
			return
		}
		closers = append(closers, file)
		uploads = append(uploads, domain.FileUpload{
			Meta: rt.fileMeta(fh, file),
			Body: file,
		})
	}

	if len(uploads) == 1 {
		result, err := rt.manager.SubmitOne(r.Context(), uploads[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
		return
	}

	rt.manager.SubmitMany(r.Context(), uploads)
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": rt.queue.Stats(),
		"tasks": rt.queue.Snapshot(),
	})
}

func (rt *Router) fileMeta(fh *multipart.FileHeader, file multipart.File) domain.FileMeta {
	meta := domain.FileMeta{
		Name:      fh.Filename,
		Size:      fh.Size,
		MediaType: fh.Header.Get("Content-Type"),
	}
	if meta.MediaType != "application/pdf" {
		return meta
	}
	pages, err := rt.inspector.PageCount(file, fh.Size)
	if err != nil {
		rt.log.Warn("pdf page count failed", "file", fh.Filename, "error", err)
		return meta
	}
	meta.PageCount = pages
	return meta
}

func (rt *Router) listUploads(w http.ResponseWriter, r *http.Request) {
	tasks := rt.queue.Snapshot()
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filtered := tasks[:0]
		for _, task := range tasks {
			if strings.Contains(strings.ToLower(task.File.Name), strings.ToLower(q)) {
				filtered = append(filtered, task)
			}
		}
		tasks = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (rt *Router) uploadStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.UploadStats
		Uploading bool `json:"uploading"`
	}{
		UploadStats: rt.queue.Stats(),
		Uploading:   rt.queue.IsUploading(),
	})
}

func (rt *Router) uploadByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/uploads/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		task, ok := rt.queue.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": domain.ErrTaskNotFound.Error()})
			return
		}
		writeJSON(w, http.StatusOK, task)
	case http.MethodDelete:
		// Removal is idempotent. Dropping an unknown or in-flight id is a
		// no-op for the store and silences any late callbacks for it.
		rt.queue.Remove(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) clearCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.queue.ClearCompleted()
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) clearAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.queue.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	switch {
	case r.Method == http.MethodDelete && rest != "" && !strings.Contains(rest, "/"):
		if err := rt.mutator.DeleteDocument(r.Context(), rest); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && strings.HasSuffix(rest, "/reprocess"):
		id := strings.TrimSuffix(rest, "/reprocess")
		if id == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
			return
		}
		if err := rt.mutator.ReprocessDocument(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) reprocessBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		DocumentIDs []string `json:"document_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_ids is required"})
		return
	}
	if err := rt.mutator.ReprocessBatch(r.Context(), req.DocumentIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (rt *Router) uploadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "upload history is not configured"})
		return
	}
	limit := rt.cfg.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := rt.history.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="uploads.xlsx"`)
	if err := report.WriteWorkbook(entries, w); err != nil {
		rt.log.Error("report workbook write failed", "error", err)
	}
}

func (rt *Router) notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": rt.feed.Recent(limit)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
