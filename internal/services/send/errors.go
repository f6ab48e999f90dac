package send

import (
	"fmt"
	"strings"

	"zkl/internal/domain"
)

// SideEffects lists what a failed send already changed outside the process.
type SideEffects struct {
	Published bool
	ContentID string
	Attested  bool
	Sequence  uint64
	Appended  bool
}

func (s SideEffects) String() string {
	var parts []string
	if s.Published {
		parts = append(parts, "published "+s.ContentID)
	}
	if s.Attested {
		parts = append(parts, fmt.Sprintf("attested sequence %d", s.Sequence))
	}
	if s.Appended {
		parts = append(parts, "appended to inbox")
	}
	if len(parts) == 0 {
		return "no side effects"
	}
	return strings.Join(parts, ", ")
}

// StageError is returned by Service.Send. errors.Is and errors.As see
// through it to the underlying cause.
type StageError struct {
	Stage       domain.SendStage
	Err         error
	SideEffects SideEffects
}

func (e *StageError) Error() string {
	return fmt.Sprintf("send failed at %s: %v (%s)", e.Stage, e.Err, e.SideEffects)
}

func (e *StageError) Unwrap() error { return e.Err }
