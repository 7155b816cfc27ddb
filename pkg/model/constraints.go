package model

import (
	"github.com/limaJavier/judging/pkg/sat"
)

type constraintState struct {
	evaluator predicateEvaluator
	indexer   indexer

	teams,
	slots,
	judges,
	presentations uint64
}

func (state constraintState) literal(team, slot, judge uint64) int64 {
	return int64(state.indexer.Index(team, slot, judge))
}

// ordinaryJudges iterates every judge but the special-track one
func (state constraintState) ordinaryJudges() []uint64 {
	judges := make([]uint64, 0, state.judges)
	for judge := range state.judges {
		if state.evaluator.Ordinary(judge) {
			judges = append(judges, judge)
		}
	}
	return judges
}

// Each ordinary judge sees at most one team per slot
func judgeCapacityConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for _, judge := range state.ordinaryJudges() {
		for slot := range state.slots {
			literals := make([]int64, 0, state.teams)
			for team := range state.teams {
				literals = append(literals, state.literal(team, slot, judge))
			}
			clauses = append(clauses, sat.AtMostOne(literals)...)
		}
	}
	return clauses
}

// Each team is assigned at most once per slot, special-track judge included
func teamCapacityConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for team := range state.teams {
		for slot := range state.slots {
			literals := make([]int64, 0, state.judges)
			for judge := range state.judges {
				literals = append(literals, state.literal(team, slot, judge))
			}
			clauses = append(clauses, sat.AtMostOne(literals)...)
		}
	}
	return clauses
}

// A team meets a given ordinary judge at most once in the whole schedule
func repeatPairingConstraints(state constraintState) [][]int64 {
	clauses := make([][]int64, 0)
	for team := range state.teams {
		for _, judge := range state.ordinaryJudges() {
			literals := make([]int64, 0, state.slots)
			for slot := range state.slots {
				literals = append(literals, state.literal(team, slot, judge))
			}
			clauses = append(clauses, sat.AtMostOne(literals)...)
		}
	}
	return clauses
}

// A team never presents to ordinary judges in two consecutive slots
func backToBackConstraints(state constraintState) [][]int64 {
	judges := state.ordinaryJudges()
	clauses := make([][]int64, 0)
	for team := range state.teams {
		for slot := uint64(0); slot+1 < state.slots; slot++ {
			for _, judge1 := range judges {
				for _, judge2 := range judges {
					// x(k, s, j) ^ x(k, s+1, j') = 0
					clauses = append(clauses, []int64{-state.literal(team, slot, judge1), -state.literal(team, slot+1, judge2)})
				}
			}
		}
	}
	return clauses
}

// x(k, s, special) = SpecialSlot(s) ^ SpecialTeam(k)
func specialBindingConstraints(state constraintState) [][]int64 {
	specialJudge := state.judges - 1
	clauses := make([][]int64, 0, state.teams*state.slots)
	for team := range state.teams {
		for slot := range state.slots {
			literal := state.literal(team, slot, specialJudge)
			if state.evaluator.Bound(team, slot) {
				clauses = append(clauses, []int64{literal})
			} else {
				clauses = append(clauses, []int64{-literal})
			}
		}
	}
	return clauses
}

// Each team presents exactly `presentations` times to ordinary judges. Auxiliary variables come from the pool.
func coverageConstraints(state constraintState, pool *sat.VariablePool) [][]int64 {
	judges := state.ordinaryJudges()
	clauses := make([][]int64, 0)
	for team := range state.teams {
		literals := make([]int64, 0, state.slots*uint64(len(judges)))
		for slot := range state.slots {
			for _, judge := range judges {
				literals = append(literals, state.literal(team, slot, judge))
			}
		}
		clauses = append(clauses, sat.Cardinality(pool, literals, int(state.presentations), int(state.presentations))...)
	}
	return clauses
}

// Every ordinary judge's load (teams seen across all slots) lies within [floor, ceiling]
func loadConstraints(state constraintState, pool *sat.VariablePool, floor, ceiling int) [][]int64 {
	clauses := make([][]int64, 0)
	for _, judge := range state.ordinaryJudges() {
		literals := make([]int64, 0, state.teams*state.slots)
		for team := range state.teams {
			for slot := range state.slots {
				literals = append(literals, state.literal(team, slot, judge))
			}
		}
		clauses = append(clauses, sat.Cardinality(pool, literals, floor, ceiling)...)
	}
	return clauses
}
