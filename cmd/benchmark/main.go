package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kdduha/mermaid-mapgen/internal/logger"
)

// 1x1 transparent PNG
var pixelPNG = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
})

var (
	dialects = []string{"mindmap", "concept", "flowchart", "sequence"}

	cases = []BenchCase{
		{Topic: "Neural Networks", Description: "layers, training and activation functions", ImageTopics: []string{"Neural Networks", "Layers"}},
		{Topic: "Photosynthesis", ImageTopics: []string{"Chlorophyll"}},
		{Topic: "OAuth 2.0 login", Description: "browser, client app, authorization server"},
		{Topic: "Solar System", ImageTopics: []string{"Sun", "Earth", "Jupiter"}},
	}
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/generate", "generate endpoint")
	timeout := flag.Duration("timeout", 2*time.Minute, "per request timeout")
	flag.Parse()

	lg, err := logger.New("dev")
	if err != nil {
		panic(err)
	}
	defer lg.Sync()

	ctx := context.Background()

	var results []BenchResult
	for _, dialect := range dialects {
		for _, c := range cases {
			res := benchmarkCase(ctx, *endpoint, *timeout, dialect, c)
			if res.Err != nil {
				lg.Warn("request failed", "dialect", dialect, "topic", res.Topic, "error", res.Err)
			} else {
				lg.Info("request ok", "dialect", dialect, "topic", res.Topic, "duration", res.Duration, "images", res.Images)
			}
			results = append(results, res)
		}
	}

	printMarkdown(results)
}

func benchmarkCase(ctx context.Context, endpoint string, timeout time.Duration, dialect string, c BenchCase) BenchResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := GenerateRequest{
		Topic:       c.Topic,
		Description: c.Description,
		Dialect:     dialect,
	}
	for _, topic := range c.ImageTopics {
		req.Images = append(req.Images, ImageInput{Payload: pixelPNG, Topic: topic})
	}

	start := time.Now()
	resp, err := send(ctx, endpoint, req)
	res := BenchResult{
		Topic:    c.Topic,
		Dialect:  dialect,
		Duration: time.Since(start),
		Err:      err,
	}
	if err == nil {
		res.Lines = strings.Count(resp.DiagramText, "\n") + 1
		res.Images = strings.Count(resp.DiagramText, "<img ")
	}
	return res
}

func send(ctx context.Context, endpoint string, req GenerateRequest) (*GenerateResponse, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal req: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out GenerateResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !out.Success {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, out.Error)
	}
	return &out, nil
}

func aggregate(results []BenchResult) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		a := m[r.Dialect]
		if r.Err != nil {
			a.Failed++
			m[r.Dialect] = a
			continue
		}
		a.Count++
		a.Total += r.Duration
		a.Lines += r.Lines
		a.Injected += r.Images
		m[r.Dialect] = a
	}
	return m
}

func printMarkdown(results []BenchResult) {
	fmt.Println("\n## Benchmark Results")
	fmt.Println()
	fmt.Println("| Dialect | Requests | Failed | Avg Time | Total Time | Avg Lines | Images |")
	fmt.Println("|---------|----------|--------|----------|------------|-----------|--------|")

	agg := aggregate(results)
	keys := make([]string, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		totalCount    int
		totalFailed   int
		totalDuration time.Duration
	)

	for _, dialect := range keys {
		a := agg[dialect]
		var avg time.Duration
		var avgLines int
		if a.Count > 0 {
			avg = a.Total / time.Duration(a.Count)
			avgLines = a.Lines / a.Count
		}
		fmt.Printf("| %s | %d | %d | %v | %v | %d | %d |\n",
			dialect,
			a.Count,
			a.Failed,
			avg.Round(time.Millisecond),
			a.Total.Round(time.Millisecond),
			avgLines,
			a.Injected,
		)
		totalCount += a.Count
		totalFailed += a.Failed
		totalDuration += a.Total
	}

	if totalCount > 0 {
		mean := totalDuration / time.Duration(totalCount)
		fmt.Printf("| **ALL** | %d | %d | %v | %v | - | - |\n",
			totalCount,
			totalFailed,
			mean.Round(time.Millisecond),
			totalDuration.Round(time.Millisecond),
		)
	}
}
