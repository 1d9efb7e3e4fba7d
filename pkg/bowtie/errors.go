package bowtie

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateNodeName = errors.New("duplicate node name")
	ErrUnknownNode       = errors.New("unknown node")
	ErrRoleConflict      = errors.New("node already has a different role")
	ErrMissingTopEvent   = errors.New("bow-tie has no top event")
	ErrCycle             = errors.New("dependency graph contains a cycle")
	ErrFrozen            = errors.New("bow-tie is already built")
	ErrInvalidNode       = errors.New("invalid node definition")

	// ErrInvalidTopology is returned when a barrier has nothing upstream of it.
	ErrInvalidTopology = errors.New("barriers must have at least one parent node")
	// ErrDegenerateSample is returned when a barrier passed signal that its
	// parents never carried, so its effectiveness ratio is undefined.
	ErrDegenerateSample = errors.New("parent signal sum is zero")
)

// ModelError records which operation failed on which node.
type ModelError struct {
	Op    string // e.g. "Deterministic", "Tag", "BarrierEffectiveness"
	Node  string
	Cause error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Node, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// NewModelError wraps cause with the operation and node it concerns.
func NewModelError(op, node string, cause error) error {
	return &ModelError{Op: op, Node: node, Cause: cause}
}

// IsTopologyError reports whether err came from an invalid bow-tie shape.
func IsTopologyError(err error) bool {
	return errors.Is(err, ErrInvalidTopology) || errors.Is(err, ErrCycle) || errors.Is(err, ErrMissingTopEvent)
}
