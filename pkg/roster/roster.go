package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/limaJavier/judging/pkg/config"
	"github.com/limaJavier/judging/pkg/model"

	"github.com/samber/lo"
)

var ErrInvalidRoster = errors.New("invalid roster")

const (
	headerTeamID    = "Team ID"
	headerTeamName  = "Team Name"
	headerSpecial   = "Special"
	headerJudgeName = "Judge Name"
	headerRoomName  = "Room Name"
	headerOrg       = "Org"
	headerRepName   = "Rep Name"
)

type Team struct {
	ID    string
	Name  string
	Flags []string
}

func (team Team) Has(flag string) bool {
	return lo.Contains(team.Flags, flag)
}

// RoomRow is a line of the room roster before judges and reps are grouped into it
type RoomRow struct {
	Name string
	Org  string
}

type Room struct {
	Name   string
	Org    string
	Judges []string
	Rep    string
}

// Roster holds the read-only facts of one event. Judge indices follow the model: ordinary judges in
// roster order, then the special-track judge.
type Roster struct {
	Teams   []Team
	Judges  []string // Ordinary judges
	Rooms   []Room   // Ordinary rooms
	Special Room     // Reserved room, holding only the special-track judge

	Marker string // Flag of special-track teams
}

// Load reads the four rosters named by the configuration and groups judges and reps into rooms
func Load(cfg *config.Config) (*Roster, error) {
	flags := lo.Uniq(append([]string{strings.ToLower(cfg.SpecialTrack.Marker)}, cfg.TeamFlags...))

	teams, err := readFile(cfg.TeamIDs, func(r io.Reader) ([]Team, error) { return ReadTeams(r, flags, cfg.SpecialTrack.Marker) })
	if err != nil {
		return nil, err
	}
	judges, err := readFile(cfg.JudgeNames, ReadJudges)
	if err != nil {
		return nil, err
	}
	rooms, err := readFile(cfg.RoomNames, ReadRooms)
	if err != nil {
		return nil, err
	}
	reps, err := readFile(cfg.RepNames, ReadReps)
	if err != nil {
		return nil, err
	}

	return New(teams, judges, rooms, reps, cfg.SpecialTrack)
}

// New groups the rosters into rooms and checks the result is usable by the model
func New(teams []Team, judges []string, rooms []RoomRow, reps []string, special config.SpecialTrackConfig) (*Roster, error) {
	marker := strings.ToLower(special.Marker)
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: no teams", ErrInvalidRoster)
	}
	if len(judges) == 0 {
		return nil, fmt.Errorf("%w: no judges", ErrInvalidRoster)
	}
	if duplicates := lo.FindDuplicates(lo.Map(teams, func(team Team, _ int) string { return team.ID })); len(duplicates) > 0 {
		return nil, fmt.Errorf("%w: duplicated team ids %v", ErrInvalidRoster, duplicates)
	}
	if duplicates := lo.FindDuplicates(judges); len(duplicates) > 0 {
		return nil, fmt.Errorf("%w: duplicated judges %v", ErrInvalidRoster, duplicates)
	}
	if lo.Contains(judges, special.JudgeName) {
		return nil, fmt.Errorf("%w: judge %q collides with the special-track judge", ErrInvalidRoster, special.JudgeName)
	}

	hasSpecialTeams := lo.SomeBy(teams, func(team Team) bool { return team.Has(marker) })
	ordinary, specialRoom, err := groupRooms(judges, rooms, reps, special, hasSpecialTeams)
	if err != nil {
		return nil, err
	}

	return &Roster{
		Teams:   teams,
		Judges:  judges,
		Rooms:   ordinary,
		Special: specialRoom,
		Marker:  marker,
	}, nil
}

// SpecialTeams lists the indices of special-track teams
func (roster *Roster) SpecialTeams() []uint64 {
	indices := make([]uint64, 0)
	for i, team := range roster.Teams {
		if team.Has(roster.Marker) {
			indices = append(indices, uint64(i))
		}
	}
	return indices
}

// ModelInput derives the counts and eligibility sets the constraint model is built from
func (roster *Roster) ModelInput(slots, presentations uint64, specialSlots []uint64) model.ModelInput {
	return model.ModelInput{
		Teams:                uint64(len(roster.Teams)),
		Slots:                slots,
		Judges:               uint64(len(roster.Judges)) + 1,
		PresentationsPerTeam: presentations,
		SpecialTeams:         roster.SpecialTeams(),
		SpecialSlots:         specialSlots,
	}
}

func ReadTeams(r io.Reader, flags []string, marker string) ([]Team, error) {
	header, records, err := readCSV(r, headerTeamID, headerTeamName)
	if err != nil {
		return nil, err
	}
	marker = strings.ToLower(marker)
	special, hasSpecial := header[headerSpecial]

	teams := make([]Team, 0, len(records))
	for line, record := range records {
		id := strings.TrimSpace(record[header[headerTeamID]])
		if id == "" {
			return nil, fmt.Errorf("%w: empty team id on line %v", ErrInvalidRoster, line+2)
		}

		// Flags are the dash-separated markers of the id, e.g. "brave-otter-prhi-first"
		markers := strings.Split(strings.ToLower(id), "-")
		teamFlags := lo.Filter(flags, func(flag string, _ int) bool { return lo.Contains(markers, flag) })
		if hasSpecial && truthy(record[special]) && !lo.Contains(teamFlags, marker) {
			teamFlags = append(teamFlags, marker)
		}

		teams = append(teams, Team{
			ID:    id,
			Name:  strings.TrimSpace(record[header[headerTeamName]]),
			Flags: teamFlags,
		})
	}
	return teams, nil
}

func ReadJudges(r io.Reader) ([]string, error) {
	return readColumn(r, headerJudgeName)
}

func ReadReps(r io.Reader) ([]string, error) {
	return readColumn(r, headerRepName)
}

func ReadRooms(r io.Reader) ([]RoomRow, error) {
	header, records, err := readCSV(r, headerRoomName, headerOrg)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(records, func(record []string, _ int) (RoomRow, bool) {
		name := strings.TrimSpace(record[header[headerRoomName]])
		return RoomRow{Name: name, Org: strings.TrimSpace(record[header[headerOrg]])}, name != ""
	}), nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	file, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	defer file.Close()

	result, err := read(file)
	if err != nil {
		return result, fmt.Errorf("%v: %w", path, err)
	}
	return result, nil
}

func readColumn(r io.Reader, column string) ([]string, error) {
	header, records, err := readCSV(r, column)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(records, func(record []string, _ int) (string, bool) {
		value := strings.TrimSpace(record[header[column]])
		return value, value != ""
	}), nil
}

// readCSV returns the column positions by header name and the data records
func readCSV(r io.Reader, required ...string) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	} else if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: missing header", ErrInvalidRoster)
	}

	header := make(map[string]int)
	for i, name := range rows[0] {
		header[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := header[name]; !ok {
			return nil, nil, fmt.Errorf("%w: missing column %q", ErrInvalidRoster, name)
		}
	}

	records := make([][]string, 0, len(rows)-1)
	for line, row := range rows[1:] {
		if len(row) < len(rows[0]) {
			if lo.EveryBy(row, func(field string) bool { return strings.TrimSpace(field) == "" }) {
				continue
			}
			return nil, nil, fmt.Errorf("%w: line %v has %v fields, expected %v", ErrInvalidRoster, line+2, len(row), len(rows[0]))
		}
		records = append(records, row)
	}
	return header, records, nil
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
