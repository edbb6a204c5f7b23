package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Temperature is the fixed sampling temperature for diagram generation.
const Temperature = 0.7

var ErrEmptyResponse = errors.New("empty response from model")

// Oracle turns a prompt into raw diagram text.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// GenerationError wraps any failure of the text generation service.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func failure(provider string, err error) error {
	return &GenerationError{Provider: provider, Err: err}
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := f(ctx, prompt)
	if err != nil {
		return "", failure(f.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", failure(f.Name(), ErrEmptyResponse)
	}
	return text, nil
}

func (f Func) Name() string { return "func" }
