package model

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/limaJavier/judging/pkg/sat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcreteScenario(t *testing.T) {
	//** Arrange
	timetabler := NewTimetabler(sat.NewGiniSolver(), nil, nil)
	input := ModelInput{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 2}

	//** Act
	result, err := timetabler.Build(context.Background(), input)

	//** Assert
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, result.Status)
	require.NoError(t, timetabler.Verify(result.Assignment, input))

	for team := range input.Teams {
		for judge := range uint64(2) {
			meetings := 0
			for slot := range input.Slots {
				if result.Assignment.Get(team, slot, judge) {
					meetings++
				}
			}
			assert.Equal(t, 1, meetings, "team %v must meet judge %v exactly once", team, judge)
		}
		// Only slots 0 and 2 are non-adjacent
		assert.False(t, result.Assignment.Get(team, 1, 0))
		assert.False(t, result.Assignment.Get(team, 1, 1))
		for slot := range input.Slots {
			assert.False(t, result.Assignment.Get(team, slot, input.SpecialJudge()), "special judge must stay unused")
		}
	}
	assert.Equal(t, []uint64{2, 2}, result.Loads)
	assert.Equal(t, uint64(0), result.Spread)
}

func TestInfeasibleScenario(t *testing.T) {
	//** Arrange
	timetabler := NewTimetabler(sat.NewGiniSolver(), nil, nil)
	input := ModelInput{Teams: 5, Slots: 2, Judges: 3, PresentationsPerTeam: 2}

	//** Act
	result, err := timetabler.Build(context.Background(), input)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, result.Status)
	assert.False(t, result.Solved())
	assert.Empty(t, result.Assignment.Triples())
}

func TestSatisfiableInstances(t *testing.T) {
	timetabler := NewTimetabler(sat.NewGiniSolver(), nil, nil)

	instances := map[string]ModelInput{
		"special track in the middle": {
			Teams: 6, Slots: 6, Judges: 5, PresentationsPerTeam: 2,
			SpecialTeams: []uint64{0, 3}, SpecialSlots: []uint64{2, 3},
		},
		"special track at the start": {
			Teams: 8, Slots: 7, Judges: 4, PresentationsPerTeam: 2,
			SpecialTeams: []uint64{1}, SpecialSlots: []uint64{0},
		},
		"three presentations": {
			Teams: 8, Slots: 8, Judges: 5, PresentationsPerTeam: 3,
		},
		"single ordinary judge": {
			Teams: 2, Slots: 3, Judges: 2, PresentationsPerTeam: 1,
		},
	}

	for name, input := range instances {
		t.Run(name, func(t *testing.T) {
			//** Act
			result, err := timetabler.Build(context.Background(), input)

			//** Assert
			require.NoError(t, err)
			require.Equal(t, StatusOptimal, result.Status)
			assert.NoError(t, timetabler.Verify(result.Assignment, input))
			assertInvariants(t, result.Assignment, input)
			assert.Equal(t, Spread(result.Assignment.Loads(input.OrdinaryJudges())), result.Spread)
		})
	}
}

func TestFairnessOptimality(t *testing.T) {
	timetabler := NewTimetabler(sat.NewGiniSolver(), nil, nil)

	instances := []ModelInput{
		{Teams: 3, Slots: 4, Judges: 4, PresentationsPerTeam: 2},
		{Teams: 4, Slots: 4, Judges: 4, PresentationsPerTeam: 2},
		{Teams: 5, Slots: 5, Judges: 4, PresentationsPerTeam: 1},
		{Teams: 3, Slots: 5, Judges: 3, PresentationsPerTeam: 2, SpecialTeams: []uint64{0}, SpecialSlots: []uint64{1}},
		{Teams: 4, Slots: 5, Judges: 4, PresentationsPerTeam: 2, SpecialTeams: []uint64{1, 2}, SpecialSlots: []uint64{2}},
		{Teams: 4, Slots: 3, Judges: 3, PresentationsPerTeam: 2}, // Infeasible
	}

	for _, input := range instances {
		//** Arrange
		bestSpread, feasible := bruteForceSpread(input)

		//** Act
		result, err := timetabler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		if !feasible {
			assert.Equal(t, StatusInfeasible, result.Status, "%+v", input)
			continue
		}
		require.Equal(t, StatusOptimal, result.Status, "%+v", input)
		assert.Equal(t, bestSpread, result.Spread, "%+v", input)
		assertInvariants(t, result.Assignment, input)
	}
}

func TestInvalidInput(t *testing.T) {
	timetabler := NewTimetabler(sat.NewGiniSolver(), nil, nil)

	inputs := []ModelInput{
		{Teams: 0, Slots: 3, Judges: 3, PresentationsPerTeam: 2},
		{Teams: 2, Slots: 0, Judges: 3, PresentationsPerTeam: 2},
		{Teams: 2, Slots: 3, Judges: 1, PresentationsPerTeam: 2},
		{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 0},
		{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 2, SpecialTeams: []uint64{2}},
		{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 2, SpecialSlots: []uint64{3}},
		{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 2, SpecialTeams: []uint64{1, 1}},
		{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 2, SpecialTeams: []uint64{0}, SpecialSlots: []uint64{1, 1}},
	}

	for _, input := range inputs {
		_, err := timetabler.Build(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", input)
	}
}

func TestCancelledBeforeFirstAnswer(t *testing.T) {
	timetabler := NewTimetabler(sat.NewGiniSolver(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := timetabler.Build(ctx, ModelInput{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescent(t *testing.T) {
	// Two teams, two ordinary judges, one presentation each: both teams on judge 0 is feasible but unbalanced
	input := ModelInput{Teams: 2, Slots: 3, Judges: 3, PresentationsPerTeam: 1}
	indexer := newIndexer(input.Teams, input.Slots, input.Judges)
	unbalanced := sat.SATSolution{
		int64(indexer.Index(0, 0, 0)),
		int64(indexer.Index(1, 2, 0)),
	}

	t.Run("Interrupted descent keeps the feasible schedule", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		solver := &scriptedSolver{first: unbalanced, afterFirst: cancel}
		model, err := NewModel(input)
		require.NoError(t, err)

		//** Act
		result, err := NewOptimizer(solver, nil, nil).Solve(ctx, model)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, StatusFeasible, result.Status)
		assert.Equal(t, []uint64{2, 0}, result.Loads)
		assert.Equal(t, uint64(2), result.Spread)
		assert.Equal(t, 1, result.Solves)
	})

	t.Run("Completed descent balances the judges", func(t *testing.T) {
		//** Arrange
		solver := &scriptedSolver{first: unbalanced, inner: sat.NewGiniSolver()}
		model, err := NewModel(input)
		require.NoError(t, err)

		//** Act
		result, err := NewOptimizer(solver, nil, nil).Solve(context.Background(), model)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, StatusOptimal, result.Status)
		assert.Equal(t, []uint64{1, 1}, result.Loads)
		assert.Equal(t, 2, result.Solves)
		assert.NoError(t, Verify(result.Assignment, input))
	})

	t.Run("Deadline during a bounded solve keeps the feasible schedule", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		solver := &scriptedSolver{first: unbalanced, inner: blockingSolver{}}
		model, err := NewModel(input)
		require.NoError(t, err)

		//** Act
		result, err := NewOptimizer(solver, nil, nil).Solve(ctx, model)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, StatusFeasible, result.Status)
		assert.Equal(t, uint64(2), result.Spread)
		assert.Equal(t, 2, result.Solves)
	})

	t.Run("Solver failure is an error", func(t *testing.T) {
		solver := &scriptedSolver{err: errors.New("boom")}
		model, err := NewModel(input)
		require.NoError(t, err)

		_, err = NewOptimizer(solver, nil, nil).Solve(context.Background(), model)
		assert.EqualError(t, err, "boom")
	})
}

func TestBoundedModel(t *testing.T) {
	model, err := NewModel(ModelInput{Teams: 4, Slots: 4, Judges: 3, PresentationsPerTeam: 1})
	require.NoError(t, err)
	hardClauses := len(model.SAT.Clauses)

	bounded := model.Bounded(2, 2)

	assert.Greater(t, bounded.Variables, model.SAT.Variables)
	assert.Greater(t, len(bounded.Clauses), hardClauses)
	assert.Len(t, model.SAT.Clauses, hardClauses, "bounding must not alter the hard instance")

	solution, err := sat.NewGiniSolver().Solve(context.Background(), bounded)
	require.NoError(t, err)
	require.NotNil(t, solution)
	assert.Equal(t, []uint64{2, 2}, model.Decode(solution).Loads(2))
}

// scriptedSolver answers the first call with a fixed solution and delegates the rest
type scriptedSolver struct {
	first      sat.SATSolution
	afterFirst func()
	inner      sat.SATSolver
	err        error
	calls      int
}

func (solver *scriptedSolver) Solve(ctx context.Context, instance sat.SAT) (sat.SATSolution, error) {
	solver.calls++
	if solver.err != nil {
		return nil, solver.err
	}
	if solver.calls == 1 {
		if solver.afterFirst != nil {
			solver.afterFirst()
		}
		return solver.first, nil
	}
	return solver.inner.Solve(ctx, instance)
}

// blockingSolver never answers before the context ends
type blockingSolver struct{}

func (blockingSolver) Solve(ctx context.Context, _ sat.SAT) (sat.SATSolution, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// Independent restatement of the hard constraints
func assertInvariants(t *testing.T, assignment Assignment, input ModelInput) {
	t.Helper()
	special := input.SpecialJudge()
	specialTeams := make(map[uint64]bool)
	for _, team := range input.SpecialTeams {
		specialTeams[team] = true
	}
	specialSlots := make(map[uint64]bool)
	for _, slot := range input.SpecialSlots {
		specialSlots[slot] = true
	}

	for team := range input.Teams {
		presentations := uint64(0)
		for judge := range input.OrdinaryJudges() {
			meetings := 0
			for slot := range input.Slots {
				if assignment.Get(team, slot, judge) {
					meetings++
					presentations++
				}
			}
			assert.LessOrEqual(t, meetings, 1, "team %v repeats judge %v", team, judge)
		}
		assert.Equal(t, input.PresentationsPerTeam, presentations, "coverage of team %v", team)

		for slot := range input.Slots {
			perSlot := 0
			for judge := range input.Judges {
				if assignment.Get(team, slot, judge) {
					perSlot++
				}
			}
			assert.LessOrEqual(t, perSlot, 1, "team %v is double booked in slot %v", team, slot)
			assert.Equal(t, specialTeams[team] && specialSlots[slot], assignment.Get(team, slot, special), "special binding of team %v slot %v", team, slot)

			if slot+1 < input.Slots {
				assert.False(t, presents(assignment, input, team, slot) && presents(assignment, input, team, slot+1),
					"team %v presents back to back in slots %v and %v", team, slot, slot+1)
			}
		}
	}

	for slot := range input.Slots {
		for judge := range input.OrdinaryJudges() {
			teams := 0
			for team := range input.Teams {
				if assignment.Get(team, slot, judge) {
					teams++
				}
			}
			assert.LessOrEqual(t, teams, 1, "judge %v sees several teams in slot %v", judge, slot)
		}
	}
}

func presents(assignment Assignment, input ModelInput, team, slot uint64) bool {
	for judge := range input.OrdinaryJudges() {
		if assignment.Get(team, slot, judge) {
			return true
		}
	}
	return false
}

// bruteForceSpread enumerates every schedule satisfying the hard constraints and returns the smallest load spread
func bruteForceSpread(input ModelInput) (uint64, bool) {
	judges := input.OrdinaryJudges()
	specialTeams := make(map[uint64]bool)
	for _, team := range input.SpecialTeams {
		specialTeams[team] = true
	}
	specialSlots := make(map[uint64]bool)
	for _, slot := range input.SpecialSlots {
		specialSlots[slot] = true
	}

	// Per team, every choice of ordinary (slot, judge) meetings honoring coverage, rest gaps, no repeats and
	// the special-track occupation
	options := make([][][][2]uint64, input.Teams)
	for team := range input.Teams {
		var choose func(start uint64, chosen [][2]uint64)
		choose = func(start uint64, chosen [][2]uint64) {
			if uint64(len(chosen)) == input.PresentationsPerTeam {
				options[team] = append(options[team], append([][2]uint64{}, chosen...))
				return
			}
			for slot := start; slot < input.Slots; slot++ {
				if specialTeams[team] && specialSlots[slot] {
					continue
				}
				if len(chosen) > 0 && chosen[len(chosen)-1][0]+1 >= slot {
					continue
				}
				for judge := range judges {
					repeated := false
					for _, meeting := range chosen {
						repeated = repeated || meeting[1] == judge
					}
					if repeated {
						continue
					}
					choose(slot+1, append(chosen, [2]uint64{slot, judge}))
				}
			}
		}
		choose(0, nil)
	}

	best := uint64(math.MaxUint64)
	occupied := make(map[[2]uint64]bool)
	loads := make([]uint64, judges)

	var search func(team uint64)
	search = func(team uint64) {
		if team == input.Teams {
			best = min(best, Spread(loads))
			return
		}
		for _, option := range options[team] {
			free := true
			for _, meeting := range option {
				free = free && !occupied[meeting]
			}
			if !free {
				continue
			}
			for _, meeting := range option {
				occupied[meeting] = true
				loads[meeting[1]]++
			}
			search(team + 1)
			for _, meeting := range option {
				occupied[meeting] = false
				loads[meeting[1]]--
			}
		}
	}
	search(0)

	return best, best != math.MaxUint64
}
