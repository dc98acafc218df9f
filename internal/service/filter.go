package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/abbrevlab/annotab/internal/domain"
)

// FilterRowIndexes ranks the rows of a tab view against a fuzzy query and
// returns the matching view indexes, best match first. An empty query
// matches every row in view order.
func FilterRowIndexes(query string, view []*domain.Row) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		indexes := make([]int, len(view))
		for i := range view {
			indexes[i] = i
		}
		return indexes
	}

	targets := make([]string, len(view))
	for i, row := range view {
		targets[i] = row.Sentence + " " + row.Abbreviation + " " + row.LongForm
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Sort(ranks)

	indexes := make([]int, len(ranks))
	for i, rank := range ranks {
		indexes[i] = rank.OriginalIndex
	}
	return indexes
}
