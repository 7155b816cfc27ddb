package schedule

import (
	"fmt"

	"github.com/limaJavier/judging/pkg/model"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const clockLayout = "15:04"

type Decoder struct {
	logger *zap.Logger
}

func NewDecoder(logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger}
}

// Decode turns a solved result into the schedule views. The assignment is re-validated first: any
// violation is returned as a *model.InvariantError and nothing is decoded.
func (decoder *Decoder) Decode(result model.Result, event Event) (*Schedule, error) {
	if !result.Solved() {
		return nil, model.ErrInfeasible
	}

	input := event.Input
	if uint64(len(event.Roster.Teams)) != input.Teams || uint64(len(event.Roster.Judges))+1 != input.Judges {
		return nil, fmt.Errorf("%w: roster has %v teams and %v judges but the model has %v teams and %v judges", model.ErrInvalidInput,
			len(event.Roster.Teams), len(event.Roster.Judges)+1, input.Teams, input.Judges)
	}
	if err := model.Verify(result.Assignment, input); err != nil {
		return nil, err
	}

	schedule := &Schedule{
		Status: result.Status,
		Slots:  lo.Times(int(input.Slots), func(slot int) string { return event.Clock.SlotLabel(uint64(slot)) }),
		Labels: event.Roster.Labels(),
	}

	//** General and id schedules
	ordinary := input.OrdinaryJudges()
	for _, triple := range result.Assignment.Triples() {
		if triple.Judge >= ordinary {
			continue
		}
		team := event.Roster.Teams[triple.Team]
		entry := Entry{
			Team:       team.Name,
			Slot:       schedule.Slots[triple.Slot],
			Label:      schedule.Labels[triple.Judge],
			TeamIndex:  triple.Team,
			SlotIndex:  triple.Slot,
			JudgeIndex: triple.Judge,
		}
		schedule.General = append(schedule.General, entry)
		entry.Team = team.ID
		schedule.ByID = append(schedule.ByID, entry)
	}

	//** Loads
	loads := result.Assignment.Loads(ordinary)
	schedule.Spread = model.Spread(loads)
	schedule.Judges = lo.Map(loads, func(load uint64, judge int) JudgeLoad {
		return JudgeLoad{Judge: event.Roster.Judges[judge], Label: schedule.Labels[judge], Assignments: load}
	})

	judge := 0
	for _, room := range event.Roster.Rooms {
		total := lo.Sum(loads[judge : judge+len(room.Judges)])
		judge += len(room.Judges)
		schedule.Rooms = append(schedule.Rooms, RoomLoad{Room: room.Name, Judges: room.Judges, Rep: room.Rep, Assignments: total})
	}
	if event.Roster.Special.Name != "" {
		schedule.Rooms = append(schedule.Rooms, RoomLoad{
			Room:        event.Roster.Special.Name,
			Judges:      event.Roster.Special.Judges,
			Rep:         event.Roster.Special.Rep,
			Assignments: result.Assignment.Loads(input.Judges)[input.SpecialJudge()],
		})
	}

	schedule.Special = decoder.specialReport(result.Assignment, event, schedule)
	return schedule, nil
}

func (decoder *Decoder) specialReport(assignment model.Assignment, event Event, schedule *Schedule) SpecialReport {
	input := event.Input
	report := SpecialReport{Org: event.Roster.Special.Org, Room: event.Roster.Special.Name}
	if start, end, ok := event.Clock.SpecialWindow(); ok {
		report.WindowStart = start.Format(clockLayout)
		report.WindowEnd = end.Format(clockLayout)
	}

	specialLabel := event.Roster.Label(input.SpecialJudge())
	for _, index := range input.SpecialTeams {
		team := event.Roster.Teams[index]
		entry := SpecialTeam{Name: team.Name, ID: team.ID, SpecialMeetings: []Meeting{}, Meetings: []Meeting{}}

		for slot := range input.Slots {
			if assignment.Get(index, slot, input.SpecialJudge()) {
				entry.SpecialMeetings = append(entry.SpecialMeetings, Meeting{Slot: schedule.Slots[slot], Label: specialLabel})
			}
			for judge := range input.OrdinaryJudges() {
				if assignment.Get(index, slot, judge) {
					entry.Meetings = append(entry.Meetings, Meeting{Slot: schedule.Slots[slot], Label: schedule.Labels[judge]})
				}
			}
		}

		entry.Complete = len(entry.SpecialMeetings) > 0 &&
			len(entry.SpecialMeetings) == len(input.SpecialSlots) &&
			uint64(len(entry.Meetings)) == input.PresentationsPerTeam
		if !entry.Complete {
			decoder.logger.Warn("special-track team is missing meetings",
				zap.String("team", team.ID),
				zap.Int("special_meetings", len(entry.SpecialMeetings)),
				zap.Int("special_slots", len(input.SpecialSlots)),
				zap.Int("meetings", len(entry.Meetings)),
			)
		}
		report.Teams = append(report.Teams, entry)
	}
	return report
}
