package schedule

import (
	"time"

	"github.com/limaJavier/judging/pkg/model"
	"github.com/limaJavier/judging/pkg/roster"
)

// Clock maps slot indices to wall-clock labels
type Clock interface {
	SlotLabel(slot uint64) string
	SpecialWindow() (start, end time.Time, ok bool)
}

// Event gathers the read-only facts a result is decoded against
type Event struct {
	Roster *roster.Roster
	Input  model.ModelInput
	Clock  Clock
}

// Entry is one ordinary meeting. Team holds the team name in the general schedule and the team id in
// the id schedule.
type Entry struct {
	Team  string
	Slot  string
	Label string

	TeamIndex  uint64
	SlotIndex  uint64
	JudgeIndex uint64
}

type Meeting struct {
	Slot  string
	Label string
}

type SpecialTeam struct {
	Name string
	ID   string

	SpecialMeetings []Meeting // With the special-track judge
	Meetings        []Meeting // With ordinary judges
	Complete        bool
}

type SpecialReport struct {
	Org         string
	Room        string
	WindowStart string
	WindowEnd   string
	Teams       []SpecialTeam
}

type RoomLoad struct {
	Room        string
	Judges      []string
	Rep         string
	Assignments uint64
}

type JudgeLoad struct {
	Judge       string
	Label       string
	Assignments uint64
}

// Schedule is the decoded view of one solve. It is derived from the assignment and never mutated.
type Schedule struct {
	Status model.Status
	Spread uint64

	Slots  []string // Slot labels in slot order
	Labels []string // Ordinary judge labels in judge order

	General []Entry
	ByID    []Entry
	Special SpecialReport
	Rooms   []RoomLoad
	Judges  []JudgeLoad
}

// IncompleteSpecialTeams lists the special-track teams whose report is missing meetings
func (schedule *Schedule) IncompleteSpecialTeams() []SpecialTeam {
	incomplete := make([]SpecialTeam, 0)
	for _, team := range schedule.Special.Teams {
		if !team.Complete {
			incomplete = append(incomplete, team)
		}
	}
	return incomplete
}
