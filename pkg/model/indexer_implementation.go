package model

type indexerImplementation struct {
	teams  uint64
	slots  uint64
	judges uint64
}

func (indexer *indexerImplementation) Index(team, slot, judge uint64) uint64 {
	return judge + indexer.judges*slot + indexer.judges*indexer.slots*team + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (team, slot, judge uint64) {
	index = index - 1
	judge = index % indexer.judges
	index = index / indexer.judges

	slot = index % indexer.slots
	index = index / indexer.slots

	team = index % indexer.teams

	return team, slot, judge
}

func (indexer *indexerImplementation) Size() uint64 {
	return indexer.teams * indexer.slots * indexer.judges
}
