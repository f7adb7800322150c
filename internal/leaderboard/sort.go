package leaderboard

import (
	"math"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"market-board/internal/model"
)

const (
	RankColumn   = "Rank"
	ReturnColumn = "Return %"

	// unrankedRank keeps rows with no usable rank at the bottom.
	unrankedRank = 999
)

// Schema says which columns compare numerically and which of those hold
// percentages rather than currency-like values.
type Schema struct {
	numeric map[string]bool
	percent map[string]bool
}

func NewSchema(numeric, percent []string) Schema {
	s := Schema{numeric: map[string]bool{}, percent: map[string]bool{}}
	for _, c := range numeric {
		s.numeric[c] = true
	}
	for _, c := range percent {
		s.percent[c] = true
	}
	return s
}

func DefaultSchema() Schema {
	return NewSchema([]string{RankColumn, "Region Rank", ReturnColumn}, []string{ReturnColumn})
}

func (s Schema) IsNumeric(column string) bool {
	return s.numeric[column]
}

// Value is the comparison value of a raw cell. It is never displayed.
func (s Schema) Value(column string, raw any) float64 {
	if s.percent[column] {
		return ParsePercent(raw)
	}
	return ParseCurrency(raw)
}

// SortByKey returns a sorted copy. Numeric mode is descending with
// unparseable values last; lexical mode is ascending by locale collation.
func (s Schema) SortByKey(rows []model.Record, key string, numeric bool) []model.Record {
	out := make([]model.Record, len(rows))
	copy(out, rows)

	if numeric {
		vals := make([]float64, len(out))
		idx := make([]int, len(out))
		for i := range out {
			idx[i] = i
			vals[i] = s.Value(key, out[i][key])
		}
		sort.SliceStable(idx, func(i, j int) bool {
			return compareDesc(vals[idx[i]], vals[idx[j]]) < 0
		})
		sorted := make([]model.Record, len(out))
		for i, k := range idx {
			sorted[i] = out[k]
		}
		return sorted
	}

	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i][key], out[j][key]) < 0
	})
	return out
}

func SortByKey(rows []model.Record, key string, numeric bool) []model.Record {
	return DefaultSchema().SortByKey(rows, key, numeric)
}

func compareDesc(x, y float64) int {
	xn, yn := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xn && yn:
		return 0
	case xn:
		return 1
	case yn:
		return -1
	case y > x:
		return 1
	case y < x:
		return -1
	default:
		return 0
	}
}

// DefaultOrder is the ordering applied right after a load: by rank
// ascending when the sheet has a Rank column, else by return descending,
// else sheet order.
func (s Schema) DefaultOrder(table model.Table) []model.Record {
	switch {
	case table.HasColumn(RankColumn):
		out := make([]model.Record, len(table.Rows))
		copy(out, table.Rows)
		rank := func(r model.Record) float64 {
			v := leadingFloat(r[RankColumn])
			if math.IsNaN(v) || v == 0 {
				return unrankedRank
			}
			return v
		}
		sort.SliceStable(out, func(i, j int) bool {
			return rank(out[i]) < rank(out[j])
		})
		return out
	case table.HasColumn(ReturnColumn):
		return s.SortByKey(table.Rows, ReturnColumn, true)
	default:
		out := make([]model.Record, len(table.Rows))
		copy(out, table.Rows)
		return out
	}
}

// Sorter holds the header click state for one loaded table. Each header
// toggles independently: the first click sorts, the next reverses.
type Sorter struct {
	mu     sync.Mutex
	schema Schema
	base   []model.Record
	view   []model.Record
	asc    map[string]bool
	active string
}

func NewSorter(schema Schema, base, initial []model.Record) *Sorter {
	return &Sorter{
		schema: schema,
		base:   base,
		view:   initial,
		asc:    map[string]bool{},
	}
}

func (s *Sorter) Click(key string) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	numeric := s.schema.IsNumeric(key)
	sorted := s.schema.SortByKey(s.base, key, numeric)
	if s.asc[key] {
		if numeric {
			s.reverseParsed(sorted, key)
		} else {
			reverse(sorted)
		}
	}
	s.asc[key] = !s.asc[key]
	s.active = key
	s.view = sorted
	return copyRows(sorted)
}

func (s *Sorter) reverseParsed(rows []model.Record, key string) {
	n := len(rows)
	for n > 0 && math.IsNaN(s.schema.Value(key, rows[n-1][key])) {
		n--
	}
	reverse(rows[:n])
}

func (s *Sorter) View() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.view)
}

func (s *Sorter) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.asc[s.active]
}

func reverse(rows []model.Record) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func copyRows(rows []model.Record) []model.Record {
	out := make([]model.Record, len(rows))
	copy(out, rows)
	return out
}
