package sat

// VariablePool hands out auxiliary variables above a reserved range. It is not safe for concurrent use,
// allocation order determines the numbering of the resulting instance.
type VariablePool struct {
	next uint64
}

func NewVariablePool(reserved uint64) *VariablePool {
	return &VariablePool{next: reserved}
}

func (pool *VariablePool) Fresh() int64 {
	pool.next++
	return int64(pool.next)
}

// Variables returns the highest variable handed out so far (reserved ones included)
func (pool *VariablePool) Variables() uint64 {
	return pool.next
}

func (pool *VariablePool) Clone() *VariablePool {
	return &VariablePool{next: pool.next}
}

// Cardinality encodes atLeast <= |{literal : literal is true}| <= atMost with a sequential counter.
//
// Counter variable r(i, c) is equivalent to "at least c of the first i literals are true":
//
//	r(i, c) <-> r(i-1, c) v (r(i-1, c-1) ^ x_i)
//
// A negative atLeast disables the lower bound and an atMost >= len(literals) disables the upper one.
func Cardinality(pool *VariablePool, literals []int64, atLeast, atMost int) [][]int64 {
	n := len(literals)
	if atMost < 0 || atLeast > n || atLeast > atMost {
		// Trivially unsatisfiable bound, expressed without an empty clause
		contradiction := pool.Fresh()
		return [][]int64{{contradiction}, {-contradiction}}
	}

	hasUpper := atMost < n
	hasLower := atLeast > 0
	if !hasUpper && !hasLower {
		return nil
	}

	width := 0
	if hasLower {
		width = atLeast
	}
	if hasUpper {
		width = max(width, atMost+1)
	}

	clauses := make([][]int64, 0, 4*n*width+1)

	// previous[c] is r(i-1, c); zero stands for the constant false (row 0 and unreachable counts)
	previous := make([]int64, width+1)
	for i := range n {
		x := literals[i]
		current := make([]int64, width+1)

		for c := 1; c <= width; c++ {
			r := pool.Fresh()
			current[c] = r

			// r(i-1, c) -> r(i, c)
			if previous[c] != 0 {
				clauses = append(clauses, []int64{-previous[c], r})
			}

			// r(i-1, c-1) ^ x -> r(i, c), with r(i-1, 0) being the constant true
			if c == 1 {
				clauses = append(clauses, []int64{-x, r})
			} else if previous[c-1] != 0 {
				clauses = append(clauses, []int64{-previous[c-1], -x, r})
			}

			// r(i, c) -> r(i-1, c) v x
			clause := []int64{-r, x}
			if previous[c] != 0 {
				clause = append(clause, previous[c])
			}
			clauses = append(clauses, clause)

			// r(i, c) -> r(i-1, c) v r(i-1, c-1)
			if c > 1 {
				clause := []int64{-r}
				if previous[c] != 0 {
					clause = append(clause, previous[c])
				}
				if previous[c-1] != 0 {
					clause = append(clause, previous[c-1])
				}
				clauses = append(clauses, clause)
			}
		}

		previous = current
	}

	if hasUpper {
		clauses = append(clauses, []int64{-previous[atMost+1]})
	}
	if hasLower {
		clauses = append(clauses, []int64{previous[atLeast]})
	}

	return clauses
}

// AtMostOne encodes pairwise exclusion over the literals
func AtMostOne(literals []int64) [][]int64 {
	clauses := make([][]int64, 0, len(literals)*(len(literals)-1)/2)
	for i := range len(literals) - 1 {
		for j := i + 1; j < len(literals); j++ {
			clauses = append(clauses, []int64{-literals[i], -literals[j]})
		}
	}
	return clauses
}
