package sat

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const DefaultSolver = "gini"

var ErrUnknownSolver = errors.New("unknown solver")

// Solvers lists the accepted solver names; every one except gini needs an executable
var Solvers = []string{"gini", "kissat", "cadical", "cryptominisat", "minisat", "glucose"}

var executableSolvers = map[string]func(path string) SATSolver{
	"kissat":        NewKissatSolver,
	"cadical":       NewCadicalSolver,
	"cryptominisat": NewCryptominisatSolver,
	"minisat":       NewMinisatSolver,
	"glucose":       NewGlucoseSolver,
}

// NewSolver builds a solver by name. Executable solvers look their path up in paths and fall back to
// the solver's name, so binaries found in PATH need no configuration.
func NewSolver(name string, paths map[string]string) (SATSolver, error) {
	name = strings.ToLower(name)
	if name == "" || name == DefaultSolver {
		return NewGiniSolver(), nil
	}

	constructor, ok := executableSolvers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q: allowed values are %v", ErrUnknownSolver, name, Solvers)
	}

	path, ok := paths[name]
	if !ok || path == "" {
		path = name
	}
	return constructor(path), nil
}

// Parses the "v" lines of a solver's standard output (SAT competition format)
func parseSolution(solverOutput string) (SATSolution, error) {
	fields := lo.FlatMap(
		lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
			return len(line) > 0 && line[0] == 'v'
		}),
		func(line string, _ int) []string {
			return strings.Fields(line[1:])
		},
	)
	return parseLiterals(fields)
}

// Parses a minisat-like result file: a status line followed by the literals
func parseResultFile(output string) (SATSolution, error) {
	lines := lo.Filter(strings.Split(output, "\n"), func(line string, _ int) bool { return strings.TrimSpace(line) != "" })
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty solver result file")
	}

	switch status := strings.TrimSpace(lines[0]); status {
	case "UNSAT":
		return nil, nil
	case "SAT":
		return parseLiterals(strings.Fields(strings.Join(lines[1:], " ")))
	default:
		// Some solvers only print the literals
		return parseLiterals(strings.Fields(strings.Join(lines, " ")))
	}
}

func parseLiterals(fields []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value == 0 { // Terminating literal
			break
		}
		solution = append(solution, value)
	}
	return slices.Clip(solution), nil
}
