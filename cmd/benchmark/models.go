package main

import "time"

type GenerateRequest struct {
	Topic       string       `json:"topic"`
	Description string       `json:"description,omitempty"`
	Dialect     string       `json:"dialect"`
	Images      []ImageInput `json:"images,omitempty"`
}

type ImageInput struct {
	Payload string `json:"payload"`
	Topic   string `json:"topic"`
}

type GenerateResponse struct {
	DiagramText string `json:"diagramText"`
	Success     bool   `json:"success"`
	Error       string `json:"error"`
}

type BenchCase struct {
	Topic       string
	Description string
	ImageTopics []string
}

type BenchResult struct {
	Topic    string
	Dialect  string
	Duration time.Duration
	Lines    int
	Images   int
	Err      error
}

type Agg struct {
	Count    int
	Failed   int
	Total    time.Duration
	Lines    int
	Injected int
}
