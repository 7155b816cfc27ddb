package model

import "github.com/samber/lo"

// Triple is one true assignment variable
type Triple struct {
	Team  uint64
	Slot  uint64
	Judge uint64
}

// Assignment is a dense (team, slot, judge) boolean relation
type Assignment struct {
	Teams  uint64
	Slots  uint64
	Judges uint64
	values []bool
}

func NewAssignment(teams, slots, judges uint64) Assignment {
	return Assignment{
		Teams:  teams,
		Slots:  slots,
		Judges: judges,
		values: make([]bool, teams*slots*judges),
	}
}

// AssignmentFromTriples builds the assignment whose true variables are exactly the given triples
func AssignmentFromTriples(teams, slots, judges uint64, triples []Triple) Assignment {
	assignment := NewAssignment(teams, slots, judges)
	for _, triple := range triples {
		assignment.Set(triple.Team, triple.Slot, triple.Judge, true)
	}
	return assignment
}

func (assignment Assignment) offset(team, slot, judge uint64) uint64 {
	return (team*assignment.Slots+slot)*assignment.Judges + judge
}

func (assignment Assignment) Get(team, slot, judge uint64) bool {
	return assignment.values[assignment.offset(team, slot, judge)]
}

func (assignment Assignment) Set(team, slot, judge uint64, value bool) {
	assignment.values[assignment.offset(team, slot, judge)] = value
}

// Triples lists the true variables ordered by slot, then judge, then team
func (assignment Assignment) Triples() []Triple {
	triples := make([]Triple, 0)
	for slot := range assignment.Slots {
		for judge := range assignment.Judges {
			for team := range assignment.Teams {
				if assignment.Get(team, slot, judge) {
					triples = append(triples, Triple{Team: team, Slot: slot, Judge: judge})
				}
			}
		}
	}
	return triples
}

// Loads counts the teams seen by each of the first `judges` judges across all slots
func (assignment Assignment) Loads(judges uint64) []uint64 {
	loads := make([]uint64, judges)
	for team := range assignment.Teams {
		for slot := range assignment.Slots {
			for judge := range judges {
				if assignment.Get(team, slot, judge) {
					loads[judge]++
				}
			}
		}
	}
	return loads
}

// Spread is max(load) - min(load), zero for no loads
func Spread(loads []uint64) uint64 {
	if len(loads) == 0 {
		return 0
	}
	return lo.Max(loads) - lo.Min(loads)
}
