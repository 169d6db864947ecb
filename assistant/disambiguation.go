package assistant

import (
	"math/big"
	"sort"

	"github.com/jrsteele09/klarbill-gateway/internal/utils"
	"github.com/jrsteele09/klarbill-gateway/sessions"
)

const (
	LabelLatest = "latest"
	LabelOldest = "oldest"
)

// OrderCandidates sorts invoice numbers by the numeric value of their digits, highest first.
// Ties keep their original order. The first candidate is labelled latest, the last oldest.
func OrderCandidates(numbers []string) []sessions.InvoiceCandidate {
	type keyed struct {
		number string
		value  *big.Int
	}
	seen := make(map[string]struct{}, len(numbers))
	items := make([]keyed, 0, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup || n == "" {
			continue
		}
		seen[n] = struct{}{}
		items = append(items, keyed{number: n, value: utils.NumericValue(n)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].value.Cmp(items[j].value) > 0
	})

	out := make([]sessions.InvoiceCandidate, len(items))
	for i, it := range items {
		out[i] = sessions.InvoiceCandidate{Number: it.number}
	}
	if len(out) > 0 {
		out[0].Label = LabelLatest
	}
	if len(out) > 1 {
		out[len(out)-1].Label = LabelOldest
	}
	return out
}
