package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kdduha/mermaid-mapgen/internal/diagram"
	"github.com/kdduha/mermaid-mapgen/internal/logger"
	"github.com/kdduha/mermaid-mapgen/internal/models"
	"github.com/kdduha/mermaid-mapgen/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOracle struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubOracle) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", &oracle.GenerationError{Provider: s.Name(), Err: s.err}
	}
	return s.reply, nil
}

func (s *stubOracle) Name() string { return "stub" }

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func newService(o oracle.Oracle) *DiagramService {
	return NewDiagramService(logger.Nop(), o, time.Second)
}

func TestGenerateMindmapWithMarker(t *testing.T) {
	stub := &stubOracle{reply: "mindmap\n  root((Neural Networks))\n    Neural Networks [IMG]\n    Layers"}
	svc := newService(stub)

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Topic:   "Neural Networks",
		Dialect: "mindmap",
		Images:  []models.ImageInput{{Topic: "Neural Networks", Payload: "data:image/png;base64,AAA="}},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	lines := strings.Split(resp.DiagramText, "\n")
	idx := -1
	for i, l := range lines {
		if l == "    Neural Networks" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	require.Less(t, idx+1, len(lines))
	next := lines[idx+1]
	assert.True(t, strings.HasPrefix(next, "      <img"), next)
	assert.Contains(t, next, "data:image/png;base64,AAA=")
	assert.NotContains(t, resp.DiagramText, diagram.Marker)

	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "- Neural Networks")
}

func TestGenerateFencedConceptGraph(t *testing.T) {
	svc := newService(&stubOracle{reply: "```graph\ngraph TD\n  A-->B\n```"})

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "AB", Dialect: "concept-graph"})
	require.NoError(t, err)
	assert.Equal(t, &models.GenerateResponse{DiagramText: "graph TD\n  A-->B", Success: true}, resp)
}

func TestGenerateWrongDialect(t *testing.T) {
	svc := newService(&stubOracle{reply: "graph TD\n  A-->B"})

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "Login", Dialect: "sequence"})
	require.Error(t, err)
	assert.Nil(t, resp)

	var mismatch *diagram.SyntaxMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, diagram.Sequence, mismatch.Dialect)
}

func TestGenerateValidationErrorSkipsOracle(t *testing.T) {
	stub := &stubOracle{reply: "mindmap"}
	svc := newService(stub)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "  ", Dialect: "mindmap"})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.Generate(context.Background(), &models.GenerateRequest{Topic: "x", Dialect: "pie"})
	require.ErrorAs(t, err, &vErr)

	assert.Zero(t, stub.calls)
}

func TestGenerateOracleFailure(t *testing.T) {
	svc := newService(&stubOracle{err: errors.New("quota exceeded")})

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "x", Dialect: "flowchart"})
	var genErr *oracle.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Err.Error(), "quota exceeded")
}

func TestGenerateWrapsForeignOracleErrors(t *testing.T) {
	plain := oracleFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("socket closed")
	})
	svc := newService(plain)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "x", Dialect: "flowchart"})
	var genErr *oracle.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "raw", genErr.Provider)
}

func TestGenerateBlankOracleReplyIsGenerationFailure(t *testing.T) {
	for _, reply := range []string{"", " \n\t "} {
		blank := oracleFunc(func(ctx context.Context, prompt string) (string, error) {
			return reply, nil
		})
		cache := newMapCache()
		svc := newService(blank)
		svc.SetCacheClient(cache)

		_, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "x", Dialect: "mindmap"})
		var genErr *oracle.GenerationError
		require.ErrorAs(t, err, &genErr, "reply %q", reply)
		assert.Equal(t, "raw", genErr.Provider)
		assert.ErrorIs(t, err, oracle.ErrEmptyResponse)
		assert.NotErrorIs(t, err, diagram.ErrSyntaxMismatch)
		assert.Equal(t, "generation_failed", errorStatus(err))
		assert.Empty(t, cache.data)
	}
}

func TestGenerateOracleTimeout(t *testing.T) {
	slow := oracle.Func(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc := NewDiagramService(logger.Nop(), slow, 20*time.Millisecond)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "x", Dialect: "mindmap"})
	var genErr *oracle.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateCacheStoresTextWithoutPayloads(t *testing.T) {
	stub := &stubOracle{reply: "mindmap\n  root((Cats))\n    Cats [IMG]"}
	cache := newMapCache()
	svc := newService(stub)
	svc.SetCacheClient(cache)

	req := &models.GenerateRequest{
		Topic:   "Cats",
		Dialect: "mindmap",
		Images:  []models.ImageInput{{Topic: "Cats", Payload: "data:image/png;base64,FIRST"}},
	}
	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, first.DiagramText, "FIRST")

	for _, v := range cache.data {
		assert.NotContains(t, v, "data:image")
	}

	req.Images[0].Payload = "data:image/png;base64,SECOND"
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, second.DiagramText, "SECOND")
	assert.NotContains(t, second.DiagramText, "FIRST")
}

func TestGenerateDoesNotCacheFailures(t *testing.T) {
	stub := &stubOracle{reply: "not a diagram"}
	cache := newMapCache()
	svc := newService(stub)
	svc.SetCacheClient(cache)

	_, err := svc.Generate(context.Background(), &models.GenerateRequest{Topic: "x", Dialect: "mindmap"})
	require.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestGenerateImagesIgnoredForOtherDialects(t *testing.T) {
	svc := newService(&stubOracle{reply: "flowchart TD\n  Cats --> Dogs"})

	resp, err := svc.Generate(context.Background(), &models.GenerateRequest{
		Topic:   "Pets",
		Dialect: "flowchart",
		Images:  []models.ImageInput{{Topic: "Cats", Payload: "data:image/png;base64,AAA="}},
	})
	require.NoError(t, err)
	assert.Equal(t, "flowchart TD\n  Cats --> Dogs", resp.DiagramText)
}

func TestCacheKeyIgnoresPayloads(t *testing.T) {
	a := models.Diagram{Topic: "T", Dialect: diagram.Mindmap, Images: []diagram.Image{{Topic: "x", Payload: "1"}}}
	b := models.Diagram{Topic: "T", Dialect: diagram.Mindmap, Images: []diagram.Image{{Topic: "x", Payload: "2"}}}
	c := models.Diagram{Topic: "T", Dialect: diagram.Concept}

	assert.Equal(t, cacheKey(a), cacheKey(b))
	assert.NotEqual(t, cacheKey(a), cacheKey(c))
}

type oracleFunc func(ctx context.Context, prompt string) (string, error)

func (f oracleFunc) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }
func (f oracleFunc) Name() string                                                 { return "raw" }
