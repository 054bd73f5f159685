// internal/vlm/vlm.go

// Package vlm defines the boundary to the external vision-language model
// and model-editing collaborators. Their internals (weight loading,
// forward passes, edit optimization) are opaque to the harness; only the
// request and option records crossing the boundary are owned here.
package vlm

import (
	"context"

	"github.com/hujiayu1223/knowledge-editing/internal/images"
)

// DecodingConfig fixes the generation parameters for every test example in
// a run, including the anti-hallucination decoding knobs.
type DecodingConfig struct {
	UseNucleusSampling bool    `json:"useNucleusSampling"`
	NumBeams           int     `json:"numBeams"`
	MaxNewTokens       int     `json:"maxNewTokens"`
	ScaleFactor        float64 `json:"scaleFactor"`
	Threshold          int     `json:"threshold"`
	NumAttnCandidates  int     `json:"numAttnCandidates"`
	PenaltyWeights     float64 `json:"penaltyWeights"`
}

// DefaultDecoding returns the standard POPE evaluation decoding settings.
func DefaultDecoding() DecodingConfig {
	return DecodingConfig{
		NumBeams:          1,
		MaxNewTokens:      10,
		ScaleFactor:       50,
		Threshold:         15,
		NumAttnCandidates: 5,
		PenaltyWeights:    1.0,
	}
}

// VisionLanguageModel is the generation collaborator. Generate blocks until
// the model's free-text answer for one image/prompt pair is available.
type VisionLanguageModel interface {
	Generate(ctx context.Context, img images.Image, prompt string, cfg DecodingConfig) (string, error)
	// Save persists the model weights to path.
	Save(path string) error
}

// Editor is the model-editing collaborator. Edit consumes a validated
// RequestSet and returns a model observably identical in interface to the
// original.
type Editor interface {
	Edit(ctx context.Context, model VisionLanguageModel, set *RequestSet, opts EditOptions) (VisionLanguageModel, error)
}

// EditOptions carries the editor hyperparameters and the save location for
// the edited model.
type EditOptions struct {
	Params   EditorParams
	Decoding DecodingConfig
}
