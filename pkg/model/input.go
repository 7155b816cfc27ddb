package model

import (
	"fmt"

	"github.com/samber/lo"
)

// ModelInput carries the derived counts and eligibility sets the constraint model is built from.
// Judge indices [0, Judges-1) are ordinary judges, index Judges-1 is the special-track judge.
type ModelInput struct {
	Teams                uint64
	Slots                uint64
	Judges               uint64
	PresentationsPerTeam uint64
	SpecialTeams         []uint64 // Teams eligible for the special track
	SpecialSlots         []uint64 // Slots within the special-track window
}

func (input ModelInput) SpecialJudge() uint64 {
	return input.Judges - 1
}

func (input ModelInput) OrdinaryJudges() uint64 {
	return input.Judges - 1
}

func (input ModelInput) Validate() error {
	switch {
	case input.Teams == 0:
		return fmt.Errorf("%w: at least one team is required", ErrInvalidInput)
	case input.Slots == 0:
		return fmt.Errorf("%w: at least one slot is required", ErrInvalidInput)
	case input.Judges < 2:
		return fmt.Errorf("%w: at least one ordinary judge besides the special-track judge is required", ErrInvalidInput)
	case input.PresentationsPerTeam == 0:
		return fmt.Errorf("%w: presentations per team must be at least 1", ErrInvalidInput)
	}

	if team, ok := lo.Find(input.SpecialTeams, func(team uint64) bool { return team >= input.Teams }); ok {
		return fmt.Errorf("%w: special team %v is out of range [0, %v)", ErrInvalidInput, team, input.Teams)
	}
	if slot, ok := lo.Find(input.SpecialSlots, func(slot uint64) bool { return slot >= input.Slots }); ok {
		return fmt.Errorf("%w: special slot %v is out of range [0, %v)", ErrInvalidInput, slot, input.Slots)
	}
	if duplicates := lo.FindDuplicates(input.SpecialTeams); len(duplicates) > 0 {
		return fmt.Errorf("%w: special teams %v are listed more than once", ErrInvalidInput, duplicates)
	}
	if duplicates := lo.FindDuplicates(input.SpecialSlots); len(duplicates) > 0 {
		return fmt.Errorf("%w: special slots %v are listed more than once", ErrInvalidInput, duplicates)
	}
	return nil
}
