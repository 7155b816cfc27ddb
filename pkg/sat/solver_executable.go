package sat

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable (SAT competition convention)
const (
	satisfiableExitCode   = 10
	unsatisfiableExitCode = 20
)

type outputMode int

const (
	stdoutOutput outputMode = iota // Model printed on standard output as "v" lines
	fileOutput                     // Model written to a result file given as last argument
)

// executableSolver drives a DIMACS-speaking solver binary
type executableSolver struct {
	name string
	path string
	args []string
	mode outputMode
}

func NewKissatSolver(path string) SATSolver {
	return &executableSolver{name: "kissat", path: path, args: []string{"-q", "--relaxed"}, mode: stdoutOutput}
}

func NewCadicalSolver(path string) SATSolver {
	return &executableSolver{name: "cadical", path: path, args: []string{"-q"}, mode: stdoutOutput}
}

func NewCryptominisatSolver(path string) SATSolver {
	return &executableSolver{name: "cryptominisat", path: path, args: []string{"--verb", "0"}, mode: stdoutOutput}
}

func NewMinisatSolver(path string) SATSolver {
	return &executableSolver{name: "minisat", path: path, args: []string{"-verb=0"}, mode: fileOutput}
}

func NewGlucoseSolver(path string) SATSolver {
	return &executableSolver{name: "glucose", path: path, args: []string{"-verb=0"}, mode: fileOutput}
}

func (solver *executableSolver) Solve(ctx context.Context, sat SAT) (SATSolution, error) {
	dimacs := sat.ToDIMACS() // Transform SAT into DIMACS-CNF string format

	args := append([]string{}, solver.args...)
	var outputPath string
	if solver.mode == fileOutput {
		// Create temporary files to hold the DIMACS content and the solver's result
		inputFile, err := os.CreateTemp("", "dimacs-*.cnf")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		defer os.Remove(inputFile.Name())

		if _, err := inputFile.WriteString(dimacs); err != nil {
			inputFile.Close()
			return nil, fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
		}
		if err := inputFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to close temporary file: %w", err)
		}

		outputFile, err := os.CreateTemp("", solver.name+"_output-*.txt")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		outputFile.Close()
		defer os.Remove(outputFile.Name())

		outputPath = outputFile.Name()
		args = append(args, inputFile.Name(), outputPath)
	}

	cmd := exec.CommandContext(ctx, solver.path, args...)
	if solver.mode == stdoutOutput {
		cmd.Stdin = strings.NewReader(dimacs) // Feed dimacs into the solver's standard input
	}

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil && exitCode != satisfiableExitCode && exitCode != unsatisfiableExitCode {
		return nil, fmt.Errorf("an error occurred during %v execution: %v : %v", solver.name, err, stderr.String())
	} else if exitCode == unsatisfiableExitCode {
		return nil, nil
	}

	if solver.mode == stdoutOutput {
		return parseSolution(stdOut.String())
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	return parseResultFile(string(output))
}
