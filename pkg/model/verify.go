package model

// Verify re-checks an assignment against the hard constraints the model was built from. The first
// violation found is returned as an *InvariantError.
func Verify(assignment Assignment, input ModelInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if assignment.Teams != input.Teams || assignment.Slots != input.Slots || assignment.Judges != input.Judges ||
		uint64(len(assignment.values)) != input.Teams*input.Slots*input.Judges {
		return invariantErrorf(InvariantShape, "assignment is %vx%vx%v but the model is %vx%vx%v",
			assignment.Teams, assignment.Slots, assignment.Judges, input.Teams, input.Slots, input.Judges)
	}

	evaluator := newPredicateEvaluator(input)
	specialJudge := input.SpecialJudge()

	//** Initialize judge-assistance and pairings
	judgeAssistance := make(map[[2]uint64]uint64) // (slot, judge) -> team
	pairings := make(map[[2]uint64]uint64)        // (team, judge) -> slot

	for team := range input.Teams {
		presentations := uint64(0)
		previousSlotPresented := false

		for slot := range input.Slots {
			assignments := uint64(0)
			presented := false

			for judge := range input.Judges {
				if !assignment.Get(team, slot, judge) {
					continue
				}
				assignments++

				if !evaluator.Ordinary(judge) {
					continue
				}
				presented = true
				presentations++

				if other, ok := judgeAssistance[[2]uint64{slot, judge}]; ok {
					return invariantErrorf(InvariantJudgeCapacity, "judge %v sees teams %v and %v in slot %v", judge, other, team, slot)
				}
				judgeAssistance[[2]uint64{slot, judge}] = team

				if other, ok := pairings[[2]uint64{team, judge}]; ok {
					return invariantErrorf(InvariantRepeatPairing, "team %v meets judge %v in slots %v and %v", team, judge, other, slot)
				}
				pairings[[2]uint64{team, judge}] = slot
			}

			// Check that:
			// - The team is assigned at most once in the slot (special-track judge included)
			// - The team does not present to ordinary judges in two consecutive slots
			// - The special-track judge meets exactly the bound teams in the slot
			if assignments > 1 {
				return invariantErrorf(InvariantTeamCapacity, "team %v has %v assignments in slot %v", team, assignments, slot)
			}
			if presented && previousSlotPresented {
				return invariantErrorf(InvariantBackToBack, "team %v presents in consecutive slots %v and %v", team, slot-1, slot)
			}
			if assignment.Get(team, slot, specialJudge) != evaluator.Bound(team, slot) {
				return invariantErrorf(InvariantSpecialBinding, "team %v (special: %v) and slot %v (special: %v) disagree with the special-track judge assignment",
					team, evaluator.SpecialTeam(team), slot, evaluator.SpecialSlot(slot))
			}

			previousSlotPresented = presented
		}

		if presentations != input.PresentationsPerTeam {
			return invariantErrorf(InvariantCoverage, "team %v presents %v times instead of %v", team, presentations, input.PresentationsPerTeam)
		}
	}

	return nil
}
