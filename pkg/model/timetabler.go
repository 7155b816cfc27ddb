package model

import (
	"context"

	"github.com/limaJavier/judging/pkg/sat"

	"go.uber.org/zap"
)

type Timetabler interface {
	// Builds the constraint model for the input and solves it. An infeasible model is a regular result
	// (Status == StatusInfeasible), errors are reserved for invalid input and solver failures.
	Build(ctx context.Context, modelInput ModelInput) (Result, error)

	Verify(assignment Assignment, modelInput ModelInput) error
}

type satTimetabler struct {
	optimizer *Optimizer
}

func NewTimetabler(solver sat.SATSolver, logger *zap.Logger, recorder Recorder) Timetabler {
	return &satTimetabler{
		optimizer: NewOptimizer(solver, logger, recorder),
	}
}

func (timetabler *satTimetabler) Build(ctx context.Context, modelInput ModelInput) (Result, error) {
	model, err := NewModel(modelInput)
	if err != nil {
		return Result{}, err
	}
	return timetabler.optimizer.Solve(ctx, model)
}

func (timetabler *satTimetabler) Verify(assignment Assignment, modelInput ModelInput) error {
	return Verify(assignment, modelInput)
}
