// internal/vlm/bindings.go
package vlm

import (
	"context"
	"errors"
	"sync"
)

// ErrNoBindings indicates the harness was built without model or editor
// bindings registered.
var ErrNoBindings = errors.New("vlm: collaborator bindings not registered")

// ModelConstructor builds a vision-language model from its family eval
// config. Registered by the binding package at init, in the manner of
// database/sql drivers.
type ModelConstructor func(ctx context.Context, family, evalConfigPath string) (VisionLanguageModel, error)

// EditorConstructor builds the model-editing collaborator.
type EditorConstructor func() (Editor, error)

var (
	bindingsMu        sync.Mutex
	modelConstructor  ModelConstructor
	editorConstructor EditorConstructor
)

// RegisterModelConstructor installs the model binding. Later registrations
// replace earlier ones.
func RegisterModelConstructor(fn ModelConstructor) {
	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	modelConstructor = fn
}

// RegisterEditorConstructor installs the editor binding.
func RegisterEditorConstructor(fn EditorConstructor) {
	bindingsMu.Lock()
	defer bindingsMu.Unlock()
	editorConstructor = fn
}

// NewModel constructs the external model through the registered binding.
func NewModel(ctx context.Context, family, evalConfigPath string) (VisionLanguageModel, error) {
	bindingsMu.Lock()
	fn := modelConstructor
	bindingsMu.Unlock()
	if fn == nil {
		return nil, ErrNoBindings
	}
	return fn(ctx, family, evalConfigPath)
}

// NewEditor constructs the external editor through the registered binding.
func NewEditor() (Editor, error) {
	bindingsMu.Lock()
	fn := editorConstructor
	bindingsMu.Unlock()
	if fn == nil {
		return nil, ErrNoBindings
	}
	return fn()
}
