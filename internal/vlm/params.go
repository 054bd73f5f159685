// internal/vlm/params.go
package vlm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EditorParams are the editing-algorithm hyperparameters loaded from a YAML
// file (e.g. hparams/llama-7b.yaml). Their interpretation belongs to the
// editor; the harness only ferries them across the boundary.
type EditorParams struct {
	Arch         string  `yaml:"arch"`
	Layers       []int   `yaml:"layers"`
	LearningRate float64 `yaml:"lr"`
	NumSteps     int     `yaml:"num_steps"`
	ClampNorm    float64 `yaml:"clamp_norm,omitempty"`
}

// LoadEditorParams reads and decodes an editor hyperparameter file.
func LoadEditorParams(path string) (EditorParams, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return EditorParams{}, fmt.Errorf("error reading editor hparams: %w", err)
	}
	var params EditorParams
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return EditorParams{}, fmt.Errorf("error parsing editor hparams: %w", err)
	}
	if params.Arch == "" {
		return EditorParams{}, fmt.Errorf("editor hparams %s: arch is required", path)
	}
	return params, nil
}
