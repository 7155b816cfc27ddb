package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/limaJavier/judging/pkg/config"
	"github.com/limaJavier/judging/pkg/sat"

	"github.com/samber/lo"
)

const MB float32 = 1024 * 1024

type ResultType int

const (
	solved ResultType = iota
	infeasible
	failed
)

var resultTypes = map[ResultType]string{
	solved:     "solved",
	infeasible: "infeasible",
	failed:     "failed",
}

// Instance is a synthetic event: every roster is generated from these counts
type Instance struct {
	Name          string
	Teams         int
	Judges        int
	Rooms         int
	Slots         int
	Presentations int
	SpecialTeams  int // The first SpecialTeams teams carry the special marker
	WindowSlots   int // Slots covered by the special window, starting at slot 1
}

type BenchmarkResult struct {
	Solver        string
	Instance      Instance
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Variables     int64
	Clauses       int64
	Spread        int64
	Result        ResultType
}

func main() {
	executablePath := flag.String("bin", "../../bin/judging", "Path to the judging executable")
	outPath := flag.String("out", "benchmark_results.csv", "Path to the CSV results")
	timeout := flag.Duration("timeout", 0, "Time budget handed to every run, unlimited when zero")
	flag.Parse()

	instances := getInstances()
	solvers := getSolvers()
	results := make([]BenchmarkResult, 0, len(instances)*len(solvers))

	workspace, err := os.MkdirTemp("", "judging-benchmark-")
	if err != nil {
		log.Fatalf("cannot create workspace: %v", err)
	}
	defer os.RemoveAll(workspace)

	for _, instance := range instances {
		for _, solver := range solvers {
			fmt.Printf("Benchmarking instance \"%v\" with solver \"%v\"\n", instance.Name, solver)

			dir := filepath.Join(workspace, instance.Name+"-"+solver)
			configPath, err := writeInstance(dir, instance, solver)
			if err != nil {
				log.Fatalf("cannot write instance \"%v\": %v", instance.Name, err)
			}

			result := measure(*executablePath, configPath, timeout.String())
			result.Solver = solver
			result.Instance = instance
			results = append(results, result)
		}
	}

	toCsv(*outPath, results)
}

func getInstances() []Instance {
	return []Instance{
		{Name: "small", Teams: 12, Judges: 4, Rooms: 2, Slots: 8, Presentations: 2},
		{Name: "small-special", Teams: 12, Judges: 4, Rooms: 2, Slots: 8, Presentations: 2, SpecialTeams: 3, WindowSlots: 2},
		{Name: "medium", Teams: 30, Judges: 8, Rooms: 4, Slots: 12, Presentations: 2, SpecialTeams: 5, WindowSlots: 3},
		{Name: "medium-three", Teams: 30, Judges: 9, Rooms: 3, Slots: 14, Presentations: 3, SpecialTeams: 4, WindowSlots: 2},
		{Name: "large", Teams: 60, Judges: 12, Rooms: 6, Slots: 16, Presentations: 2, SpecialTeams: 8, WindowSlots: 4},
		{Name: "overbooked", Teams: 40, Judges: 4, Rooms: 2, Slots: 10, Presentations: 2},
	}
}

// getSolvers returns gini plus every external solver found in PATH
func getSolvers() []string {
	return lo.Filter(sat.Solvers, func(solver string, _ int) bool {
		if solver == sat.DefaultSolver {
			return true
		}
		_, err := exec.LookPath(solver)
		return err == nil
	})
}

// writeInstance generates the rosters and configuration of an instance into dir
func writeInstance(dir string, instance Instance, solver string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	teams := [][]string{{"Team ID", "Team Name"}}
	for i := range instance.Teams {
		id := fmt.Sprintf("team-%03d", i)
		if i < instance.SpecialTeams {
			id += "-prhi"
		}
		teams = append(teams, []string{id, fmt.Sprintf("Team %v", i)})
	}
	judges := [][]string{{"Judge Name"}}
	for i := range instance.Judges {
		judges = append(judges, []string{fmt.Sprintf("Judge %v", i)})
	}
	rooms := [][]string{{"Room Name", "Org"}}
	reps := [][]string{{"Rep Name"}}
	for i := range instance.Rooms {
		rooms = append(rooms, []string{fmt.Sprintf("Room %v", i), "HAB"})
		reps = append(reps, []string{fmt.Sprintf("Rep %v", i)})
	}
	rooms = append(rooms, []string{"Special Room", "PRHI"})

	files := map[string][][]string{"teams.csv": teams, "judges.csv": judges, "rooms.csv": rooms, "reps.csv": reps}
	for name, records := range files {
		if err := writeCsv(filepath.Join(dir, name), records); err != nil {
			return "", err
		}
	}

	// Ten-minute slots from 09:00, the window covers slots [1, WindowSlots]
	scheduling := map[string]any{
		"slot_count":  instance.Slots,
		"slot_length": 10,
		"start_time":  "09:00",
	}
	if instance.WindowSlots > 0 {
		scheduling["prhi_window_start"] = "09:10"
		scheduling["prhi_window_end"] = fmt.Sprintf("%02d:%02d", 9+instance.WindowSlots*10/60, instance.WindowSlots*10%60)
	}
	configuration := map[string]any{
		"team_ids":           filepath.Join(dir, "teams.csv"),
		"judge_names":        filepath.Join(dir, "judges.csv"),
		"room_names":         filepath.Join(dir, "rooms.csv"),
		"rep_names":          filepath.Join(dir, "reps.csv"),
		"scheduling":         scheduling,
		"presentation_count": instance.Presentations,
		"solver":             map[string]any{"name": solver},
		"output":             map[string]any{"dir": filepath.Join(dir, "out")},
		"log":                map[string]any{"level": "warn"},
	}
	content, err := json.MarshalIndent(configuration, "", "  ")
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(dir, config.DefaultFile)
	return configPath, os.WriteFile(configPath, content, 0o644)
}

func writeCsv(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func measure(executablePath, configPath, timeout string) BenchmarkResult {
	cmd := exec.Command("/usr/bin/time", "-v", executablePath, "-config", configPath, "-timeout", timeout)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	var result BenchmarkResult
	cmd.Run()
	switch cmd.ProcessState.ExitCode() {
	case 10:
		result.Result = solved
	case 20:
		result.Result = infeasible
	default:
		log.Printf("run with config \"%v\" failed (exit code %v): %v\n", configPath, cmd.ProcessState.ExitCode(), stdErr.String())
		result.Result = failed
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	result.Duration = parseDurationLine(getLine("wall clock"))
	result.Memory = parseMemoryLine(getLine("maximum resident set size"))
	result.CpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	statistics := parseStatistics(stdOut.String())
	result.Variables = statistics["Variables"]
	result.Clauses = statistics["Clauses"]
	result.Spread = statistics["Spread"]
	return result
}

func toCsv(path string, results []BenchmarkResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Solver", "Instance", "Teams", "Judges", "Rooms", "Slots", "Presentations", "Special Teams", "Window Slots", "Variables", "Clauses", "Spread", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			result.Solver,
			result.Instance.Name,
			fmt.Sprintf("%d", result.Instance.Teams),
			fmt.Sprintf("%d", result.Instance.Judges),
			fmt.Sprintf("%d", result.Instance.Rooms),
			fmt.Sprintf("%d", result.Instance.Slots),
			fmt.Sprintf("%d", result.Instance.Presentations),
			fmt.Sprintf("%d", result.Instance.SpecialTeams),
			fmt.Sprintf("%d", result.Instance.WindowSlots),
			fmt.Sprintf("%d", result.Variables),
			fmt.Sprintf("%d", result.Clauses),
			fmt.Sprintf("%d", result.Spread),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

// parseStatistics reads the "Key: value" lines the executable prints on standard output
func parseStatistics(output string) map[string]int64 {
	statistics := make(map[string]int64)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		if number, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			statistics[key] = number
		}
	}
	return statistics
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) * 1024 / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
