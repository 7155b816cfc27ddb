package model

type predicateEvaluator interface {
	// Checks whether the judge is subject to capacity and rotation rules (i.e. it is not the special-track judge)
	Ordinary(judge uint64) bool

	// Checks whether the team is eligible for the special track
	SpecialTeam(team uint64) bool

	// Checks whether the slot falls within the special-track window
	SpecialSlot(slot uint64) bool

	// Checks whether the team must meet the special-track judge at the slot
	Bound(team, slot uint64) bool
}

func newPredicateEvaluator(input ModelInput) predicateEvaluator {
	evaluator := predicateEvaluatorImplementation{
		specialJudge: input.SpecialJudge(),
		specialTeams: make([]bool, input.Teams),
		specialSlots: make([]bool, input.Slots),
	}
	for _, team := range input.SpecialTeams {
		evaluator.specialTeams[team] = true
	}
	for _, slot := range input.SpecialSlots {
		evaluator.specialSlots[slot] = true
	}
	return &evaluator
}

type predicateEvaluatorImplementation struct {
	specialJudge uint64
	specialTeams []bool
	specialSlots []bool
}

func (evaluator *predicateEvaluatorImplementation) Ordinary(judge uint64) bool {
	return judge != evaluator.specialJudge
}

func (evaluator *predicateEvaluatorImplementation) SpecialTeam(team uint64) bool {
	return evaluator.specialTeams[team]
}

func (evaluator *predicateEvaluatorImplementation) SpecialSlot(slot uint64) bool {
	return evaluator.specialSlots[slot]
}

func (evaluator *predicateEvaluatorImplementation) Bound(team, slot uint64) bool {
	return evaluator.specialTeams[team] && evaluator.specialSlots[slot]
}
