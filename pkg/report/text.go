package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/limaJavier/judging/pkg/schedule"

	"github.com/samber/lo"
)

const stampLayout = "2006-01-02 15:04:05"

func formatMeetings(meetings []schedule.Meeting) []string {
	return lo.Map(meetings, func(meeting schedule.Meeting, _ int) string {
		return fmt.Sprintf("%v (%v)", meeting.Slot, meeting.Label)
	})
}

// WriteSpecialInfo writes the special-track sheet: the reserved room and window, then one line per
// special-track team with its ordinary meetings and its special-judge meetings.
func WriteSpecialInfo(w io.Writer, report schedule.SpecialReport, presentations uint64, now time.Time) error {
	org := report.Org
	if org == "" {
		org = "Special-Track"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v Judging Schedule (%v)\n\n", org, now.Format(stampLayout))
	if report.WindowStart != "" {
		fmt.Fprintf(&b, "In room %v, from %v to %v.\n", report.Room, report.WindowStart, report.WindowEnd)
	} else {
		fmt.Fprintf(&b, "In room %v, no slot falls inside the special window.\n", report.Room)
	}

	headers := []string{org + " Teams", "Team ID"}
	for i := range presentations {
		headers = append(headers, fmt.Sprintf("Slot %v", i+1))
	}
	headers = append(headers, org+" Slots")
	fmt.Fprintf(&b, "%v,\n", strings.Join(headers, ", "))

	for _, team := range report.Teams {
		fields := append([]string{team.Name, team.ID}, formatMeetings(team.Meetings)...)
		fields = append(fields, strings.Join(lo.Map(team.SpecialMeetings, func(meeting schedule.Meeting, _ int) string {
			return meeting.Slot
		}), " "))
		line := strings.Join(fields, ", ")
		if !team.Complete {
			line += " [incomplete]"
		}
		fmt.Fprintln(&b, line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRoomAssignments writes one line per room with its judges, rep and the teams it receives,
// followed by the per-judge loads
func WriteRoomAssignments(w io.Writer, s *schedule.Schedule, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Room Assignments (%v)\n\n", now.Format(stampLayout))
	fmt.Fprintln(&b, "Room | Judges | Rep | Assignments")
	for _, room := range s.Rooms {
		fmt.Fprintf(&b, "%v | %v | %v | %v\n", room.Room, strings.Join(room.Judges, ", "), room.Rep, room.Assignments)
	}

	fmt.Fprintf(&b, "\nJudge Loads (spread %v, %v)\n", s.Spread, s.Status)
	for _, judge := range s.Judges {
		fmt.Fprintf(&b, "%v | %v | %v\n", judge.Judge, judge.Label, judge.Assignments)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
