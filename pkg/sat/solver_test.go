package sat

import (
	"context"
	"math/rand/v2"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGini(t *testing.T) {
	solver := NewGiniSolver()
	t.Run("Random instances", func(t *testing.T) {
		randomExecution(t, solver)
	})
	t.Run("Unsatisfiable instance", func(t *testing.T) {
		solution, err := solver.Solve(context.Background(), SAT{Variables: 2, Clauses: [][]int64{{1, 2}, {-1}, {-2}}})
		require.NoError(t, err)
		assert.Nil(t, solution)
	})
	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := solver.Solve(ctx, SAT{Variables: 1, Clauses: [][]int64{{1}}})
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("Deadline interrupts a running search", func(t *testing.T) {
		//** Arrange
		instance := pigeonhole(11, 10)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		start := time.Now()

		//** Act
		solution, err := solver.Solve(ctx, instance)

		//** Assert
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, solution)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
	t.Run("Unconstrained variables are false", func(t *testing.T) {
		solution, err := solver.Solve(context.Background(), SAT{Variables: 3, Clauses: [][]int64{{1}}})
		require.NoError(t, err)
		assert.Equal(t, SATSolution{1, -2, -3}, solution)
	})
}

func TestExecutableSolvers(t *testing.T) {
	for name, constructor := range executableSolvers {
		t.Run(name, func(t *testing.T) {
			path, err := exec.LookPath(name)
			if err != nil {
				t.Skipf("%v is not installed", name)
			}
			randomExecution(t, constructor(path))
		})
	}
}

func TestCardinality(t *testing.T) {
	solver := NewGiniSolver()

	for n := range 6 {
		literals := make([]int64, n)
		for i := range n {
			literals[i] = int64(i + 1)
		}

		for atLeast := -1; atLeast <= n+1; atLeast++ {
			for atMost := -1; atMost <= n+1; atMost++ {
				for mask := range 1 << n {
					//** Arrange
					pool := NewVariablePool(uint64(n))
					clauses := Cardinality(pool, literals, atLeast, atMost)
					count := 0
					for i := range n {
						if mask&(1<<i) != 0 {
							clauses = append(clauses, []int64{literals[i]})
							count++
						} else {
							clauses = append(clauses, []int64{-literals[i]})
						}
					}
					instance := SAT{Variables: pool.Variables(), Clauses: clauses}

					//** Act
					solution, err := solver.Solve(context.Background(), instance)

					//** Assert
					require.NoError(t, err)
					expected := count >= atLeast && count <= atMost
					assert.Equal(t, expected, solution != nil, "n=%d atLeast=%d atMost=%d mask=%b", n, atLeast, atMost, mask)
				}
			}
		}
	}
}

func TestAtMostOne(t *testing.T) {
	assert.Empty(t, AtMostOne(nil))
	assert.Empty(t, AtMostOne([]int64{4}))
	assert.Equal(t, [][]int64{{-1, -2}, {-1, -3}, {-2, -3}}, AtMostOne([]int64{1, 2, 3}))
}

func TestToDIMACS(t *testing.T) {
	instance := SAT{Variables: 3, Clauses: [][]int64{{1, -2}, {3}}}
	assert.Equal(t, "p cnf 3 2\n1 -2 0\n3 0\n", instance.ToDIMACS())
}

func TestExtend(t *testing.T) {
	base := SAT{Variables: 2, Clauses: [][]int64{{1, 2}}}
	extended := base.Extend(4, [][]int64{{-4}})

	assert.Equal(t, uint64(4), extended.Variables)
	assert.Len(t, extended.Clauses, 2)
	assert.Len(t, base.Clauses, 1)
}

func TestAssignment(t *testing.T) {
	assignment := SATSolution{1, -2, 3, 7}.Assignment(3)
	assert.Equal(t, []bool{false, true, false, true}, assignment)
}

func TestParseSolution(t *testing.T) {
	output := "c comment\ns SATISFIABLE\nv 1 -2 3\nv -4 5 0\n"
	solution, err := parseSolution(output)
	require.NoError(t, err)
	assert.Equal(t, SATSolution{1, -2, 3, -4, 5}, solution)

	_, err = parseSolution("v 1 x 0\n")
	assert.Error(t, err)
}

func TestParseResultFile(t *testing.T) {
	solution, err := parseResultFile("SAT\n1 -2 3 0\n")
	require.NoError(t, err)
	assert.Equal(t, SATSolution{1, -2, 3}, solution)

	solution, err = parseResultFile("UNSAT\n")
	require.NoError(t, err)
	assert.Nil(t, solution)

	solution, err = parseResultFile("-1 2 0")
	require.NoError(t, err)
	assert.Equal(t, SATSolution{-1, 2}, solution)

	_, err = parseResultFile("")
	assert.Error(t, err)
}

func TestNewSolver(t *testing.T) {
	solver, err := NewSolver("", nil)
	require.NoError(t, err)
	assert.IsType(t, &giniSolver{}, solver)

	solver, err = NewSolver("Kissat", map[string]string{"kissat": "/opt/kissat"})
	require.NoError(t, err)
	assert.Equal(t, "/opt/kissat", solver.(*executableSolver).path)

	solver, err = NewSolver("cadical", nil)
	require.NoError(t, err)
	assert.Equal(t, "cadical", solver.(*executableSolver).path)

	_, err = NewSolver("ortoolsat", nil)
	assert.ErrorIs(t, err, ErrUnknownSolver)
}

// pigeonhole places pigeons into holes, one hole each and no hole shared: unsatisfiable when pigeons > holes
func pigeonhole(pigeons, holes int64) SAT {
	variable := func(pigeon, hole int64) int64 { return pigeon*holes + hole + 1 }

	instance := SAT{Variables: uint64(pigeons * holes)}
	for pigeon := range pigeons {
		clause := make([]int64, 0, holes)
		for hole := range holes {
			clause = append(clause, variable(pigeon, hole))
		}
		instance.Clauses = append(instance.Clauses, clause)
	}
	for hole := range holes {
		literals := make([]int64, 0, pigeons)
		for pigeon := range pigeons {
			literals = append(literals, variable(pigeon, hole))
		}
		instance.Clauses = append(instance.Clauses, AtMostOne(literals)...)
	}
	return instance
}

func randomExecution(t *testing.T, solver SATSolver) {
	unsatisfiableCount := 0

	for range 10 {
		//** Arrange
		literals := uint64(rand.IntN(100) + 1)
		clauses := rand.IntN(200) + 1
		instance := generateSATInstance(literals, clauses)

		//** Act
		solution, err := solver.Solve(context.Background(), instance)

		//** Assert
		require.NoError(t, err)
		if solution == nil {
			unsatisfiableCount++
			continue
		}
		assert.True(t, assertSATSolution(instance, solution), "wrong answer")
	}

	t.Logf("Unsatisfiable instances: %v", unsatisfiableCount)
}

func generateSATInstance(literals uint64, clauses int) SAT {
	satInstance := SAT{
		Variables: literals,
		Clauses:   make([][]int64, clauses),
	}

	for i := range clauses {
		satInstance.Clauses[i] = make([]int64, 0, literals)
		for j := range literals {
			if rand.Float32() < 0.05 {
				var sign int64 = 1
				if rand.Float32() < 0.5 {
					sign = -1
				}
				satInstance.Clauses[i] = append(satInstance.Clauses[i], sign*(1+int64(j)))
			}
		}

		if len(satInstance.Clauses[i]) == 0 {
			var sign int64 = 1
			if rand.Float32() < 0.5 {
				sign = -1
			}
			satInstance.Clauses[i] = append(satInstance.Clauses[i], sign*(1+rand.Int64N(int64(literals))))
		}
	}

	return satInstance
}

func assertSATSolution(satInstance SAT, satSolution SATSolution) bool {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool)
	for _, literal := range satSolution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	// Check that all clauses are satisfied
	for _, clause := range satInstance.Clauses {
		satisfied := false
		for _, literal := range clause {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}

	return true
}
