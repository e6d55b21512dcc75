// Package enforce applies oversight decisions at the execution boundary.
package enforce

import (
	"fmt"
	"strings"

	"github.com/opsgate/opsgate/internal/model"
)

// BlockedError is returned when an oversight decision denies execution.
// It carries the decision and its guidance so callers can surface why the
// operation was refused and what would make it acceptable.
type BlockedError struct {
	Decision model.Decision
}

func (e *BlockedError) Error() string {
	if len(e.Decision.Guidance) == 0 {
		return fmt.Sprintf("operation %q blocked by oversight", e.Decision.Operation)
	}
	return fmt.Sprintf("operation %q blocked by oversight: %s",
		e.Decision.Operation, strings.Join(e.Decision.Guidance, "; "))
}

// Check returns nil for an approved decision and a *BlockedError otherwise.
func Check(d model.Decision) error {
	if d.Approved {
		return nil
	}
	return &BlockedError{Decision: d}
}
