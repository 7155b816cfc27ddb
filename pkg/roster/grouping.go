package roster

import (
	"fmt"
	"strings"

	"github.com/limaJavier/judging/pkg/config"

	"github.com/samber/lo"
)

// groupRooms isolates the special-track room, splits the judges into the remaining rooms in roster
// order (the first len(judges) % len(rooms) rooms take one judge more) and pairs each room with a rep.
func groupRooms(judges []string, rows []RoomRow, reps []string, special config.SpecialTrackConfig, required bool) ([]Room, Room, error) {
	specialRow, specialIndex, found := lo.FindIndexOf(rows, func(row RoomRow) bool {
		return strings.EqualFold(row.Org, special.Org)
	})

	specialRoom := Room{}
	if found {
		specialRoom = Room{Name: specialRow.Name, Org: specialRow.Org, Judges: []string{special.JudgeName}}
		rows = append(rows[:specialIndex:specialIndex], rows[specialIndex+1:]...)
	} else if required {
		return nil, Room{}, fmt.Errorf("%w: special-track teams exist but no room belongs to org %q", ErrInvalidRoster, special.Org)
	}

	if len(rows) == 0 {
		return nil, Room{}, fmt.Errorf("%w: no ordinary rooms", ErrInvalidRoster)
	}
	if len(reps) < len(rows) {
		return nil, Room{}, fmt.Errorf("%w: %v rooms but only %v reps", ErrInvalidRoster, len(rows), len(reps))
	}
	if len(judges) < len(rows) {
		return nil, Room{}, fmt.Errorf("%w: %v rooms but only %v judges", ErrInvalidRoster, len(rows), len(judges))
	}

	groups := split(judges, len(rows))
	rooms := make([]Room, len(rows))
	for i, row := range rows {
		rooms[i] = Room{Name: row.Name, Org: row.Org, Judges: groups[i], Rep: reps[i]}
	}
	return rooms, specialRoom, nil
}

// split partitions items into parts contiguous groups whose sizes differ by at most one
func split[T any](items []T, parts int) [][]T {
	groups := make([][]T, parts)
	size, extra := len(items)/parts, len(items)%parts
	start := 0
	for i := range parts {
		end := start + size
		if i < extra {
			end++
		}
		groups[i] = items[start:end:end]
		start = end
	}
	return groups
}

// RoomOf returns the ordinary room holding judge, or false for the special-track judge
func (roster *Roster) RoomOf(judge uint64) (Room, bool) {
	offset := uint64(0)
	for _, room := range roster.Rooms {
		if judge < offset+uint64(len(room.Judges)) {
			return room, true
		}
		offset += uint64(len(room.Judges))
	}
	return Room{}, false
}

// JudgeName names a model judge; the last index is the special-track judge
func (roster *Roster) JudgeName(judge uint64) string {
	if judge >= uint64(len(roster.Judges)) {
		return lo.FirstOr(roster.Special.Judges, "")
	}
	return roster.Judges[judge]
}

// Label is the schedule column of a judge: the room name, or "Room (Judge)" when the room is shared
func (roster *Roster) Label(judge uint64) string {
	room, ok := roster.RoomOf(judge)
	if !ok {
		room = roster.Special
	}
	if len(room.Judges) > 1 {
		return fmt.Sprintf("%v (%v)", room.Name, roster.JudgeName(judge))
	}
	return room.Name
}

// Labels lists the labels of the ordinary judges in index order
func (roster *Roster) Labels() []string {
	return lo.Times(len(roster.Judges), func(judge int) string { return roster.Label(uint64(judge)) })
}
