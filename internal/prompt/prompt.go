// internal/prompt/prompt.go

// Package prompt renders model-family instruction templates for POPE
// questions. The family set is closed: every supported vision-language
// model is enumerated here and anything else is rejected up front.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModel indicates a model family outside the supported set.
var ErrUnknownModel = errors.New("prompt: unknown model family")

// Family identifies a supported vision-language model family.
type Family string

const (
	MiniGPT4     Family = "minigpt4"
	InstructBLIP Family = "instructblip"
	LRVInstruct  Family = "lrv_instruct"
	Shikra       Family = "shikra"
	LLaVA15      Family = "llava-1.5"
)

const (
	imagePlaceholder    = "<ImageHere>"
	questionPlaceholder = "<question>"
)

// templates holds the verbatim per-family instruction strings. Each has
// exactly one image placeholder and one question placeholder.
var templates = map[Family]string{
	MiniGPT4:     "###Human: <Img><ImageHere></Img> <question> ###Assistant:",
	InstructBLIP: "<ImageHere><question>",
	LRVInstruct:  "###Human: <Img><ImageHere></Img> <question> ###Assistant:",
	Shikra:       "USER: <im_start><ImageHere><im_end> <question> ASSISTANT:",
	LLaVA15:      "USER: <ImageHere> <question> ASSISTANT:",
}

// evalConfigs maps each family to its model construction config used by the
// external collaborator.
var evalConfigs = map[Family]string{
	MiniGPT4:     "eval_configs/minigpt4_eval.yaml",
	InstructBLIP: "eval_configs/instructblip_eval.yaml",
	LRVInstruct:  "eval_configs/lrv_instruct_eval.yaml",
	Shikra:       "eval_configs/shikra_eval.yaml",
	LLaVA15:      "eval_configs/llava-1.5_eval.yaml",
}

// ParseFamily validates a model-family name from config or flags.
func ParseFamily(name string) (Family, error) {
	f := Family(name)
	if _, ok := templates[f]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownModel, name, strings.Join(FamilyNames(), ", "))
	}
	return f, nil
}

// FamilyNames lists the supported family names in a stable order.
func FamilyNames() []string {
	return []string{
		string(MiniGPT4),
		string(InstructBLIP),
		string(LRVInstruct),
		string(Shikra),
		string(LLaVA15),
	}
}

// Template returns the raw instruction template for a family.
func (f Family) Template() (string, error) {
	tmpl, ok := templates[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, string(f))
	}
	return tmpl, nil
}

// EvalConfigPath returns the model construction config path for a family.
func (f Family) EvalConfigPath() (string, error) {
	path, ok := evalConfigs[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, string(f))
	}
	return path, nil
}

// Render substitutes the question into the family template. The image
// placeholder is left intact for the model's own tokenizer; no escaping or
// truncation is applied.
func Render(f Family, question string) (string, error) {
	tmpl, err := f.Template()
	if err != nil {
		return "", err
	}
	return strings.Replace(tmpl, questionPlaceholder, question, 1), nil
}
