package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid model input")
	ErrInfeasible   = errors.New("no assignment satisfies every constraint")
)

// Names of the hard constraints an assignment is re-validated against
const (
	InvariantShape          = "shape"
	InvariantCoverage       = "coverage"
	InvariantJudgeCapacity  = "judge-capacity"
	InvariantTeamCapacity   = "team-capacity"
	InvariantRepeatPairing  = "repeat-pairing"
	InvariantBackToBack     = "back-to-back"
	InvariantSpecialBinding = "special-binding"
)

// InvariantError reports an assignment that breaks a hard constraint. It signals a defect at the
// model/solver boundary and is never patched over.
type InvariantError struct {
	Invariant string
	Message   string
}

func (err *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q violated: %v", err.Invariant, err.Message)
}

func invariantErrorf(invariant, format string, args ...any) *InvariantError {
	return &InvariantError{Invariant: invariant, Message: fmt.Sprintf(format, args...)}
}
