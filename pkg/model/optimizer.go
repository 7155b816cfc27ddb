package model

import (
	"context"
	"time"

	"github.com/limaJavier/judging/pkg/sat"

	"go.uber.org/zap"
)

type Status int

const (
	StatusInfeasible Status = iota
	StatusFeasible          // Satisfies every hard constraint, fairness not proven optimal
	StatusOptimal
)

func (status Status) String() string {
	switch status {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	default:
		return "INFEASIBLE"
	}
}

type Result struct {
	Status     Status
	Assignment Assignment
	Loads      []uint64 // Per ordinary judge
	Spread     uint64

	Variables uint64 // Size of the hard instance
	Clauses   uint64
	Solves    int // Solver invocations spent
}

func (result Result) Solved() bool {
	return result.Status != StatusInfeasible
}

// Recorder receives solver telemetry
type Recorder interface {
	ObserveModel(variables, clauses uint64)
	ObserveSolve(outcome string, duration time.Duration)
	ObserveResult(status string, spread uint64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveModel(uint64, uint64)        {}
func (nopRecorder) ObserveSolve(string, time.Duration) {}
func (nopRecorder) ObserveResult(string, uint64)       {}

// Optimizer is the solve interface: it hands the model to a SAT solver and minimizes the load spread
// of the ordinary judges by descending over explicit load bounds.
type Optimizer struct {
	solver   sat.SATSolver
	logger   *zap.Logger
	recorder Recorder
}

func NewOptimizer(solver sat.SATSolver, logger *zap.Logger, recorder Recorder) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Optimizer{solver: solver, logger: logger, recorder: recorder}
}

// Solve returns INFEASIBLE when no assignment satisfies the hard constraints, OPTIMAL when the returned
// spread is proven minimal, and FEASIBLE when the context ended the descent early. An error is returned
// for solver failures and for a context that ends before any answer.
func (optimizer *Optimizer) Solve(ctx context.Context, model *Model) (Result, error) {
	result := Result{
		Status:    StatusInfeasible,
		Variables: model.SAT.Variables,
		Clauses:   uint64(len(model.SAT.Clauses)),
	}
	optimizer.recorder.ObserveModel(result.Variables, result.Clauses)
	optimizer.logger.Debug("model built",
		zap.Uint64("variables", result.Variables),
		zap.Uint64("clauses", result.Clauses),
	)

	//** Hard constraints only
	solution, err := optimizer.solve(ctx, model.SAT, &result)
	if err != nil {
		return Result{}, err
	} else if solution == nil {
		optimizer.finish(&result)
		return result, nil
	}
	optimizer.adopt(&result, model, solution, StatusFeasible)

	//** Descend over load spreads
	total := int(model.Input.PresentationsPerTeam * model.Input.Teams) // Sum of ordinary loads, fixed by coverage
	judges := int(model.Input.OrdinaryJudges())
	lowerBound := 0
	if total%judges != 0 {
		lowerBound = 1
	}

	for spread := lowerBound; spread < int(result.Spread); spread++ {
		// floor*judges <= total <= (floor+spread)*judges
		for floor := max(0, (total+judges-1)/judges-spread); floor <= total/judges; floor++ {
			if ctx.Err() != nil {
				optimizer.logger.Warn("descent interrupted, keeping best schedule found",
					zap.Uint64("spread", result.Spread),
					zap.Error(ctx.Err()),
				)
				optimizer.finish(&result)
				return result, nil
			}

			solution, err := optimizer.solve(ctx, model.Bounded(floor, floor+spread), &result)
			if err != nil {
				if ctx.Err() != nil {
					optimizer.finish(&result)
					return result, nil
				}
				return Result{}, err
			}

			optimizer.logger.Debug("load bound tried",
				zap.Int("floor", floor),
				zap.Int("ceiling", floor+spread),
				zap.Bool("satisfiable", solution != nil),
			)
			if solution != nil {
				// Every smaller spread was refuted, so this one is minimal
				optimizer.adopt(&result, model, solution, StatusOptimal)
				optimizer.finish(&result)
				return result, nil
			}
		}
	}

	result.Status = StatusOptimal
	optimizer.finish(&result)
	return result, nil
}

func (optimizer *Optimizer) solve(ctx context.Context, instance sat.SAT, result *Result) (sat.SATSolution, error) {
	start := time.Now()
	solution, err := optimizer.solver.Solve(ctx, instance)
	result.Solves++

	outcome := "sat"
	if err != nil {
		outcome = "error"
	} else if solution == nil {
		outcome = "unsat"
	}
	optimizer.recorder.ObserveSolve(outcome, time.Since(start))
	return solution, err
}

func (optimizer *Optimizer) adopt(result *Result, model *Model, solution sat.SATSolution, status Status) {
	result.Status = status
	result.Assignment = model.Decode(solution)
	result.Loads = result.Assignment.Loads(model.Input.OrdinaryJudges())
	result.Spread = Spread(result.Loads)
}

func (optimizer *Optimizer) finish(result *Result) {
	optimizer.recorder.ObserveResult(result.Status.String(), result.Spread)
	optimizer.logger.Info("solve finished",
		zap.Stringer("status", result.Status),
		zap.Uint64("spread", result.Spread),
		zap.Uint64s("loads", result.Loads),
		zap.Int("solves", result.Solves),
	)
}
