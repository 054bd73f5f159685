// internal/vlm/requestset.go
package vlm

import (
	"errors"
	"fmt"

	"github.com/hujiayu1223/knowledge-editing/internal/images"
)

// ErrIncompleteRequestSet indicates a RequestSet that fails referential
// completeness and must not cross the editor boundary.
var ErrIncompleteRequestSet = errors.New("vlm: incomplete request set")

// RequestSet packages the edit-sample ids with everything the editor needs:
// pixel data, rendered prompts, ground-truth targets, and the counter
// labels used as edit supervision. Built once per run, read-only afterward.
type RequestSet struct {
	IDs         []int
	ImageByID   map[int]images.Image
	PromptByID  map[int]string
	TargetByID  map[int]string
	CounterByID map[int]string
}

// NewRequestSet allocates an empty RequestSet sized for n ids.
func NewRequestSet(n int) *RequestSet {
	return &RequestSet{
		IDs:         make([]int, 0, n),
		ImageByID:   make(map[int]images.Image, n),
		PromptByID:  make(map[int]string, n),
		TargetByID:  make(map[int]string, n),
		CounterByID: make(map[int]string, n),
	}
}

// Add appends one fully populated edit request.
func (s *RequestSet) Add(id int, img images.Image, prompt, target, counter string) {
	s.IDs = append(s.IDs, id)
	s.ImageByID[id] = img
	s.PromptByID[id] = prompt
	s.TargetByID[id] = target
	s.CounterByID[id] = counter
}

// Validate enforces the invariants the editor contract assumes: unique ids,
// an entry in every map for every id, and counter labels strictly opposite
// to their targets. Any violation is a fatal configuration error.
func (s *RequestSet) Validate() error {
	if len(s.IDs) == 0 {
		return fmt.Errorf("%w: no ids", ErrIncompleteRequestSet)
	}
	seen := make(map[int]struct{}, len(s.IDs))
	for _, id := range s.IDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrIncompleteRequestSet, id)
		}
		seen[id] = struct{}{}

		if _, ok := s.ImageByID[id]; !ok {
			return fmt.Errorf("%w: id %d has no image", ErrIncompleteRequestSet, id)
		}
		if _, ok := s.PromptByID[id]; !ok {
			return fmt.Errorf("%w: id %d has no prompt", ErrIncompleteRequestSet, id)
		}
		target, ok := s.TargetByID[id]
		if !ok {
			return fmt.Errorf("%w: id %d has no target label", ErrIncompleteRequestSet, id)
		}
		counter, ok := s.CounterByID[id]
		if !ok {
			return fmt.Errorf("%w: id %d has no counter label", ErrIncompleteRequestSet, id)
		}
		if (target == "yes") == (counter == "yes") {
			return fmt.Errorf("%w: id %d counter label %q does not oppose target %q", ErrIncompleteRequestSet, id, counter, target)
		}
	}
	return nil
}
