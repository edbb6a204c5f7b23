package models

import (
	"fmt"
	"strings"

	"github.com/kdduha/mermaid-mapgen/internal/diagram"
)

// GenerateRequest represents request for generate endpoint
type GenerateRequest struct {
	Topic       string       `json:"topic" validate:"required" example:"Neural Networks"`
	Description string       `json:"description" example:"Key building blocks and training concepts"`
	Dialect     string       `json:"dialect" validate:"required" enums:"mindmap,concept,flowchart,sequence" example:"mindmap"`
	MapType     string       `json:"mapType,omitempty" swaggerignore:"true"`
	Images      []ImageInput `json:"images"`
}

// ImageInput is an embedded image together with the topic it illustrates.
type ImageInput struct {
	Payload string `json:"payload" example:"data:image/png;base64,iVBORw0KGgo..."`
	Topic   string `json:"topic" example:"Neural Networks"`
}

// ValidationError is returned for requests rejected before generation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (r GenerateRequest) dialectToken() string {
	if strings.TrimSpace(r.Dialect) != "" {
		return r.Dialect
	}
	return r.MapType
}

func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return &ValidationError{Field: "topic", Reason: "topic is required"}
	}
	token := r.dialectToken()
	if strings.TrimSpace(token) == "" {
		return &ValidationError{Field: "dialect", Reason: "dialect is required"}
	}
	if _, err := diagram.ParseDialect(token); err != nil {
		return &ValidationError{Field: "dialect", Reason: fmt.Sprintf("invalid map type %q", token)}
	}
	return nil
}

// Diagram is a validated request in pipeline form.
type Diagram struct {
	Topic       string
	Description string
	Dialect     diagram.Dialect
	Images      []diagram.Image
}

// Normalize validates the request and trims its fields. Images with a blank
// topic or payload are dropped; order is preserved.
func (r GenerateRequest) Normalize() (Diagram, error) {
	if err := r.Validate(); err != nil {
		return Diagram{}, err
	}
	d, _ := diagram.ParseDialect(r.dialectToken())

	images := make([]diagram.Image, 0, len(r.Images))
	for _, img := range r.Images {
		topic := strings.TrimSpace(img.Topic)
		if topic == "" || strings.TrimSpace(img.Payload) == "" {
			continue
		}
		images = append(images, diagram.Image{Topic: topic, Payload: img.Payload})
	}

	return Diagram{
		Topic:       strings.TrimSpace(r.Topic),
		Description: strings.TrimSpace(r.Description),
		Dialect:     d,
		Images:      images,
	}, nil
}

type GenerateResponse struct {
	DiagramText string `json:"diagramText"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

func Failure(msg string) *GenerateResponse {
	return &GenerateResponse{DiagramText: "", Success: false, Error: msg}
}
