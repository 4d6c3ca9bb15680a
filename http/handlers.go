package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"houseprice/ml"
)

const (
	indexTemplate = "index.html"
	// multipart file parts above this size spill to temporary files
	maxFormMemory = 1 << 20
)

// Handlers serves the prediction pages from a predictor loaded at startup.
type Handlers struct {
	predictor *ml.Predictor
	renderer  *Renderer
	logger    *zap.Logger
}

func NewHandlers(predictor *ml.Predictor, renderer *Renderer, logger *zap.Logger) *Handlers {
	return &Handlers{predictor: predictor, renderer: renderer, logger: logger}
}

func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /login", handleLogin)
	mux.HandleFunc("GET /dashboard", handleDashboard)
	mux.HandleFunc("GET /api/health", handleHealth)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	page, err := h.renderIndex("")
	if err != nil {
		h.logger.Error("render home page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, page)
}

// handlePredict answers 200 whether or not a price could be produced;
// failures carry a JSON {"error": ...} body instead of the page. Both
// urlencoded and multipart bodies are accepted.
func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.predictError(w, r, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	result := h.predictor.Predict(r.PostForm)
	if !result.OK() {
		h.predictError(w, r, result.Err)
		return
	}

	page, err := h.renderIndex(result.Text())
	if err != nil {
		h.predictError(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (h *Handlers) predictError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("prediction failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
}

func (h *Handlers) renderIndex(predictionText string) ([]byte, error) {
	var buf bytes.Buffer
	err := h.renderer.Render(&buf, indexTemplate, IndexPage{
		Cities:         h.predictor.Cities(),
		PredictionText: predictionText,
	})
	return buf.Bytes(), err
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Login page for users"))
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Dashboard page for users"))
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
