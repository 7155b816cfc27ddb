package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/limaJavier/judging/pkg/config"
	"github.com/limaJavier/judging/pkg/logger"
	"github.com/limaJavier/judging/pkg/metrics"
	"github.com/limaJavier/judging/pkg/model"
	"github.com/limaJavier/judging/pkg/report"
	"github.com/limaJavier/judging/pkg/roster"
	"github.com/limaJavier/judging/pkg/sat"
	"github.com/limaJavier/judging/pkg/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	exitSolved     = 10
	exitInfeasible = 20
	exitInvalid    = 15
	exitError      = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	// Define arguments
	configPtr := flag.String("config", config.DefaultFile, "Path to the judging configuration (JSON)")
	solverPtr := flag.String("solver", "", fmt.Sprintf("SAT-Solver to use, overriding the configuration. Allowed values are: %v", sat.Solvers))
	timeoutPtr := flag.Duration("timeout", 0, "Time budget for the fairness descent, overriding the configuration; the best schedule found so far is kept when it expires")
	outPtr := flag.String("out", "", "Directory where the artifacts are written, overriding the configuration")
	pdfPtr := flag.Bool("pdf", false, "Also render the team schedule as PDF")
	metricsPtr := flag.String("metrics", "", "Path of a prometheus textfile receiving the run metrics")
	flag.Parse()

	//** Configuration
	cfg, err := config.Load(*configPtr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	if *solverPtr != "" {
		cfg.Solver.Name = *solverPtr
	}
	if *timeoutPtr > 0 {
		cfg.Solver.Timeout = *timeoutPtr
	}
	if *outPtr != "" {
		cfg.Output.Dir = *outPtr
	}
	if *metricsPtr != "" {
		cfg.Output.MetricsFile = *metricsPtr
	}
	cfg.Output.PDF = cfg.Output.PDF || *pdfPtr
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot build logger: %v\n", err)
		return exitError
	}
	defer log.Sync() //nolint:errcheck

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	//** Rosters
	event, err := roster.Load(cfg)
	if err != nil {
		log.Error("cannot load rosters", zap.Error(err))
		return exitError
	}
	input := event.ModelInput(cfg.Scheduling.SlotCount, cfg.PresentationCount, cfg.SpecialSlots())
	log.Info("rosters loaded",
		zap.Int("teams", len(event.Teams)),
		zap.Int("judges", len(event.Judges)),
		zap.Int("rooms", len(event.Rooms)),
		zap.Uint64s("special_teams", input.SpecialTeams),
		zap.Uint64s("special_slots", input.SpecialSlots),
	)

	//** Initialize engines
	solver, err := sat.NewSolver(cfg.Solver.Name, cfg.Solver.Paths)
	if err != nil {
		log.Error("cannot build solver", zap.Error(err))
		return exitError
	}
	recorder := metrics.NewRecorder(runID)
	if cfg.Output.MetricsFile != "" {
		defer func() {
			if err := recorder.WriteToTextfile(cfg.Output.MetricsFile); err != nil {
				log.Warn("cannot write metrics", zap.String("path", cfg.Output.MetricsFile), zap.Error(err))
			}
		}()
	}
	timetabler := model.NewTimetabler(solver, log, recorder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
		defer cancel()
	}

	//** Build timetable
	start := time.Now()
	result, err := timetabler.Build(ctx, input)
	if err != nil {
		log.Error("an error occurred during timetable construction", zap.Error(err))
		return exitError
	}
	log.Info("timetable built", zap.Stringer("status", result.Status), zap.Duration("elapsed", time.Since(start)))
	printStatistics(result)

	if !result.Solved() {
		fmt.Println("No feasible schedule found.")
		return exitInfeasible
	}

	//** Decode and verify
	decoded, err := schedule.NewDecoder(log).Decode(result, schedule.Event{Roster: event, Input: input, Clock: cfg})
	if err != nil {
		var invariantErr *model.InvariantError
		if errors.As(err, &invariantErr) {
			log.Error("solver returned an invalid timetable", zap.String("invariant", invariantErr.Invariant), zap.Error(err))
			return exitInvalid
		}
		log.Error("cannot decode timetable", zap.Error(err))
		return exitError
	}

	//** Emit artifacts
	paths, err := report.NewEmitter(cfg.Output.Dir, cfg.Output.PDF, runID, log).Emit(decoded, cfg.PresentationCount)
	if err != nil {
		log.Error("cannot write artifacts", zap.Error(err))
		return exitError
	}
	for _, path := range paths {
		fmt.Println(path)
	}
	return exitSolved
}

func printStatistics(result model.Result) {
	fmt.Printf("Variables: %v\n", result.Variables)
	fmt.Printf("Clauses: %v\n", result.Clauses)
	fmt.Printf("Status: %v\n", result.Status)
	if result.Solved() {
		fmt.Printf("Spread: %v\n", result.Spread)
	}
}
