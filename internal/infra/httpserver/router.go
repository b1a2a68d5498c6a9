package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appanalyses "github.com/clausecheck/clausecheck/internal/application/analyses"
	domai "github.com/clausecheck/clausecheck/internal/domain/ai"
	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
	"github.com/clausecheck/clausecheck/internal/middleware"
)

// MaxUploadBytes caps the analyze request payload at 25 MiB.
const MaxUploadBytes = 25 << 20

var errNoFile = errors.New("no image file provided")

type Router struct {
	svc *appanalyses.Service
}

func NewRouter(svc *appanalyses.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleAnalyze))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps pipeline and store errors onto the HTTP taxonomy. Internal
// failures are logged with full detail but surface as one generic
// message: callers never learn which stage broke.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, errNoFile):
			writeError(w, http.StatusBadRequest, "no image file provided")
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "file size limit exceeded")
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "analysis not found")
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "ai quota exceeded")
		default:
			slog.Error("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to process request")
		}
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/analyses
// Multipart upload, exactly one image under field "file".
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, MaxUploadBytes)

	file, header, err := req.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return errNoFile
	}
	defer file.Close()

	if err := middleware.ValidateUploadFilename(header.Filename); err != nil {
		return errNoFile
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	out, err := r.svc.Analyze(req.Context(), appanalyses.AnalyzeCommand{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	middleware.IncrementAnalyses()
	return writeJSON(w, out)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		// A malformed ID can never match a stored record.
		return domain.ErrNotFound
	}

	a, err := r.svc.Get(req.Context(), domain.ID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}
