package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/limaJavier/judging/pkg/schedule"

	"go.uber.org/zap"
)

const (
	TeamScheduleFile    = "team_schedule.csv"
	IDScheduleFile      = "id_schedule.csv"
	SpecialInfoFile     = "prhi_judging_info.txt"
	RoomAssignmentsFile = "room_assignments.txt"
	TeamSchedulePDFFile = "team_schedule.pdf"
)

type artifact struct {
	name  string
	write func(w io.Writer) error
}

type Emitter struct {
	dir    string
	pdf    bool
	runID  string
	now    func() time.Time
	logger *zap.Logger
}

func NewEmitter(dir string, pdf bool, runID string, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{dir: dir, pdf: pdf, runID: runID, now: time.Now, logger: logger}
}

// Emit writes every artifact of the schedule into the output directory and returns their paths
func (emitter *Emitter) Emit(s *schedule.Schedule, presentations uint64) ([]string, error) {
	if err := os.MkdirAll(emitter.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	now := emitter.now()

	general := Pivot(s.Slots, s.Labels, s.General)
	byID := Pivot(s.Slots, s.Labels, s.ByID)

	artifacts := []artifact{
		{TeamScheduleFile, func(w io.Writer) error { return WriteCSV(w, general) }},
		{IDScheduleFile, func(w io.Writer) error { return WriteCSV(w, byID) }},
		{SpecialInfoFile, func(w io.Writer) error { return WriteSpecialInfo(w, s.Special, presentations, now) }},
		{RoomAssignmentsFile, func(w io.Writer) error { return WriteRoomAssignments(w, s, now) }},
	}
	if emitter.pdf {
		artifacts = append(artifacts, artifact{TeamSchedulePDFFile, func(w io.Writer) error {
			subtitle := fmt.Sprintf("%v, spread %v, generated %v", s.Status, s.Spread, now.Format(stampLayout))
			if emitter.runID != "" {
				subtitle += ", run " + emitter.runID
			}
			content, err := RenderPDF(general, "Judging Schedule", subtitle)
			if err != nil {
				return err
			}
			_, err = w.Write(content)
			return err
		}})
	}

	paths := make([]string, 0, len(artifacts))
	for _, file := range artifacts {
		var content bytes.Buffer
		if err := file.write(&content); err != nil {
			return paths, fmt.Errorf("render %v: %w", file.name, err)
		}
		path := filepath.Join(emitter.dir, file.name)
		if err := os.WriteFile(path, content.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %v: %w", file.name, err)
		}
		emitter.logger.Debug("artifact written", zap.String("path", path), zap.Int("bytes", content.Len()))
		paths = append(paths, path)
	}
	return paths, nil
}
