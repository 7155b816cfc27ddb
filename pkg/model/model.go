package model

import (
	"sync"

	"github.com/limaJavier/judging/pkg/sat"
)

// Model is the constraint system for one run: a variable per (team, slot, judge) plus every hard constraint
// as CNF. The load-balance objective is not part of SAT, the optimizer adds it through Bounded.
type Model struct {
	Input ModelInput
	SAT   sat.SAT

	state constraintState
	pool  *sat.VariablePool
}

func NewModel(input ModelInput) (*Model, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	//** Initialize dependencies
	indexer := newIndexer(input.Teams, input.Slots, input.Judges)
	state := constraintState{
		evaluator:     newPredicateEvaluator(input),
		indexer:       indexer,
		teams:         input.Teams,
		slots:         input.Slots,
		judges:        input.Judges,
		presentations: input.PresentationsPerTeam,
	}

	// Constraints functions without auxiliary variables
	constraints := []func(state constraintState) [][]int64{
		judgeCapacityConstraints,
		teamCapacityConstraints,
		repeatPairingConstraints,
		backToBackConstraints,
		specialBindingConstraints,
	}

	//** Build SAT instance
	satInstance := buildSat(indexer.Size(), constraints, state)

	// Counter variables are numbered after the assignment variables, sequentially so numbering is stable
	pool := sat.NewVariablePool(indexer.Size())
	coverage := coverageConstraints(state, pool)
	satInstance = satInstance.Extend(pool.Variables(), coverage)

	return &Model{
		Input: input,
		SAT:   satInstance,
		state: state,
		pool:  pool,
	}, nil
}

// Bounded returns the hard instance extended with floor <= load(j) <= ceiling for every ordinary judge
func (model *Model) Bounded(floor, ceiling int) sat.SAT {
	pool := model.pool.Clone()
	clauses := loadConstraints(model.state, pool, floor, ceiling)
	return model.SAT.Extend(pool.Variables(), clauses)
}

// Decode projects a solver solution onto the assignment variables, dropping auxiliary ones
func (model *Model) Decode(solution sat.SATSolution) Assignment {
	values := solution.Assignment(model.state.indexer.Size())
	assignment := NewAssignment(model.Input.Teams, model.Input.Slots, model.Input.Judges)
	for index := uint64(1); index <= model.state.indexer.Size(); index++ {
		if values[index] {
			team, slot, judge := model.state.indexer.Attributes(index)
			assignment.Set(team, slot, judge, true)
		}
	}
	return assignment
}

func buildSat(variables uint64, constraints []func(state constraintState) [][]int64, state constraintState) sat.SAT {
	satInstance := sat.SAT{
		Variables: variables,
		Clauses:   [][]int64{},
	}

	// Execute constraints functions on different goroutines, collecting them in declaration order
	generated := make([][][]int64, len(constraints))
	var wg sync.WaitGroup
	for i, constraint := range constraints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			generated[i] = constraint(state)
		}()
	}
	wg.Wait()

	for _, clauses := range generated {
		satInstance.Clauses = append(satInstance.Clauses, clauses...)
	}
	return satInstance
}
