package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/kdduha/mermaid-mapgen/internal/diagram"
	"github.com/kdduha/mermaid-mapgen/internal/logger"
	"github.com/kdduha/mermaid-mapgen/internal/models"
)

const generationFailedMsg = "failed to generate diagram, please try again"

type diagramService interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
}

type GenerateHandler struct {
	service diagramService
	logger  *logger.Logger
}

func NewGenerateHandler(service diagramService, logger *logger.Logger) *GenerateHandler {
	return &GenerateHandler{
		service: service,
		logger:  logger,
	}
}

// Generate godoc
// @Summary Generate Mermaid diagram
// @Description Generate a Mermaid mindmap, concept graph, flowchart or sequence diagram for a topic. Images (data URLs) are placed under matching mindmap nodes.
// @Tags generate
// @Accept json
// @Produce json
// @Param request body models.GenerateRequest true "Generate request"
// @Success 200 {object} models.GenerateResponse
// @Failure 400 {object} models.GenerateResponse
// @Failure 500 {object} models.GenerateResponse
// @Router /generate [post]
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Failure(fmt.Sprintf("invalid JSON: %s", err)))
		return
	}

	resp, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		status, msg := h.classify(err)
		writeJSON(w, status, models.Failure(msg))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *GenerateHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *GenerateHandler) classify(err error) (int, string) {
	var (
		validationErr *models.ValidationError
		mismatchErr   *diagram.SyntaxMismatchError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &mismatchErr):
		return http.StatusInternalServerError, mismatchErr.Error()
	default:
		h.logger.Error("diagram generation failed", "error", err)
		return http.StatusInternalServerError, generationFailedMsg
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode: %s", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
