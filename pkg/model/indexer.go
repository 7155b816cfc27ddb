package model

// indexer interface is design to give a unique index to a combination of assignment variable's attributes and vice versa
type indexer interface {
	// Returns a unique index to a combination of assignment variable's attributes
	Index(team, slot, judge uint64) uint64
	// Returns a combination of assignment variable's attributes from a unique index
	Attributes(index uint64) (team, slot, judge uint64)
	// Returns the amount of indices, which are contiguous and start at 1
	Size() uint64
}

func newIndexer(teams, slots, judges uint64) indexer {
	return &indexerImplementation{
		teams:  teams,
		slots:  slots,
		judges: judges,
	}
}
