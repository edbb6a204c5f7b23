package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kdduha/mermaid-mapgen/internal/diagram"
	"github.com/kdduha/mermaid-mapgen/internal/logger"
	"github.com/kdduha/mermaid-mapgen/internal/metrics"
	"github.com/kdduha/mermaid-mapgen/internal/models"
	"github.com/kdduha/mermaid-mapgen/internal/oracle"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type DiagramService struct {
	logger  *logger.Logger
	oracle  oracle.Oracle
	timeout time.Duration
	cache   Cache
}

func NewDiagramService(logger *logger.Logger, o oracle.Oracle, timeout time.Duration) *DiagramService {
	return &DiagramService{
		logger:  logger,
		oracle:  o,
		timeout: timeout,
	}
}

func (s *DiagramService) SetCacheClient(cache Cache) {
	s.cache = cache
}

// Generate runs the whole pipeline for one request. Errors are one of
// *models.ValidationError, *oracle.GenerationError or
// *diagram.SyntaxMismatchError, possibly wrapped.
func (s *DiagramService) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	start := time.Now()

	d, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	log := s.logger.With("dialect", d.Dialect, "topic", d.Topic, "images", len(d.Images))
	if len(d.Images) > 0 {
		log.Debug("request images", "kb", imagesSizeKB(d.Images))
	}

	text, err := s.diagramText(ctx, d, log)
	status := "ok"
	if err != nil {
		status = errorStatus(err)
	}
	metrics.GenerationTotal(d.Dialect.String(), status)
	metrics.GenerationDuration(d.Dialect.String(), status, time.Since(start))
	if err != nil {
		return nil, err
	}

	if d.Dialect == diagram.Mindmap && len(d.Images) > 0 {
		var report diagram.InjectReport
		text, report = diagram.InjectImagesReport(text, d.Images)
		metrics.ImagesInjected(string(report.Phase), report.Injected)
		log.Info("images injected", "phase", report.Phase, "injected", report.Injected)
	}

	return &models.GenerateResponse{DiagramText: text, Success: true}, nil
}

// diagramText returns validated diagram text for d, from cache when possible.
// Image payloads never reach the cache.
func (s *DiagramService) diagramText(ctx context.Context, d models.Diagram, log *logger.Logger) (string, error) {
	key := cacheKey(d)
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache get error", "error", err)
		}
		if found {
			metrics.CacheLookup("hit")
			log.Info("served from cache")
			return cached, nil
		}
		metrics.CacheLookup("miss")
	}

	raw, err := s.generate(ctx, BuildPrompt(d))
	if err != nil {
		log.Error("generation failed", "error", err)
		return "", err
	}

	text, err := diagram.Validate(diagram.Sanitize(raw), d.Dialect)
	if err != nil {
		log.Warn("model returned wrong dialect", "error", err, "bytes", len(raw))
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text); err != nil {
			log.Warn("failed to set cache", "error", err)
		}
	}
	return text, nil
}

func (s *DiagramService) generate(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.oracle.Generate(ctx, prompt)
	if err != nil {
		metrics.OracleRequestsTotal(s.oracle.Name(), "error")
		var genErr *oracle.GenerationError
		if !errors.As(err, &genErr) {
			err = &oracle.GenerationError{Provider: s.oracle.Name(), Err: err}
		}
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		metrics.OracleRequestsTotal(s.oracle.Name(), "error")
		return "", &oracle.GenerationError{Provider: s.oracle.Name(), Err: oracle.ErrEmptyResponse}
	}
	metrics.OracleRequestsTotal(s.oracle.Name(), "ok")
	return raw, nil
}

func errorStatus(err error) string {
	var genErr *oracle.GenerationError
	switch {
	case errors.As(err, &genErr):
		return "generation_failed"
	case errors.Is(err, diagram.ErrSyntaxMismatch):
		return "syntax_mismatch"
	default:
		return "error"
	}
}

func cacheKey(d models.Diagram) string {
	data := []string{
		d.Dialect.String(),
		d.Topic,
		d.Description,
	}
	if d.Dialect == diagram.Mindmap {
		for _, img := range d.Images {
			data = append(data, img.Topic)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(data, "\x00")))
	return hex.EncodeToString(hash[:])
}

func imagesSizeKB(images []diagram.Image) string {
	var total float64
	for _, img := range images {
		total += img.SizeKB()
	}
	return fmt.Sprintf("%.1f", total)
}
