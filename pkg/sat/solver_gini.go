package sat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// Interval between checks of the context while gini searches
const giniPollInterval = 20 * time.Millisecond

// giniSolver runs the instance in-process, so it works without any solver executable installed
type giniSolver struct{}

func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := gini.NewVc(int(sat.Variables), len(sat.Clauses))
	var highest int64 // Highest variable gini has seen, the rest are unconstrained
	for _, clause := range sat.Clauses {
		for _, literal := range clause {
			g.Add(z.Dimacs2Lit(int(literal)))
			highest = max(highest, literal, -literal)
		}
		g.Add(z.LitNull) // Terminate clause
	}

	// Polled with Test: Try stops the search once its duration elapses
	connection := g.GoSolve()
	ticker := time.NewTicker(giniPollInterval)
	defer ticker.Stop()

	var status int
	for {
		result, done := connection.Test()
		if done {
			status = result
			break
		}
		select {
		case <-ctx.Done():
			connection.Stop()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	switch status {
	case 1:
	case -1:
		return nil, nil
	default:
		return nil, fmt.Errorf("gini could not decide the instance")
	}

	solution := make(SATSolution, 0, sat.Variables)
	for variable := int64(1); variable <= int64(sat.Variables); variable++ {
		if variable <= highest && g.Value(z.Dimacs2Lit(int(variable))) {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}
