package sat

import (
	"fmt"
	"strings"
)

// SATSolution holds the literals of a model as reported by a solver (positive literals are true variables)
type SATSolution []int64

// Assignment expands the solution into a lookup table indexed by variable (index 0 is unused)
func (solution SATSolution) Assignment(variables uint64) []bool {
	assignment := make([]bool, variables+1)
	for _, literal := range solution {
		if literal > 0 && uint64(literal) <= variables {
			assignment[literal] = true
		}
	}
	return assignment
}

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Extend returns a copy of the instance with the extra clauses appended, leaving the receiver's clause slice untouched
func (s SAT) Extend(variables uint64, clauses [][]int64) SAT {
	extended := SAT{
		Variables: max(s.Variables, variables),
		Clauses:   make([][]int64, 0, len(s.Clauses)+len(clauses)),
	}
	extended.Clauses = append(extended.Clauses, s.Clauses...)
	extended.Clauses = append(extended.Clauses, clauses...)
	return extended
}
