package bend

import "sort"

// KTable maps the internal radius / thickness ratio to a reference
// K-factor. It backs the fallback path used when no measured deduction
// is available for the selected combination.
type KTable struct {
	ratios []float64
	ks     []float64
}

// defaultKTable is the shop reference table for air bending.
var defaultKTable = map[float64]float64{
	0.1: 0.23,
	0.2: 0.29,
	0.3: 0.32,
	0.4: 0.35,
	0.5: 0.37,
	0.6: 0.38,
	0.7: 0.39,
	0.8: 0.40,
	0.9: 0.41,
	1.0: 0.41,
	1.5: 0.44,
	2.0: 0.45,
	3.0: 0.46,
	4.0: 0.47,
	5.0: 0.48,
	6.0: 0.48,
	7.0: 0.49,
	8.0: 0.49,
	9.0: 0.50,
	10.0: 0.50,
}

// NewKTable builds a table from ratio -> K pairs. An empty map yields
// the default reference table.
func NewKTable(entries map[float64]float64) KTable {
	if len(entries) == 0 {
		entries = defaultKTable
	}
	t := KTable{
		ratios: make([]float64, 0, len(entries)),
		ks:     make([]float64, 0, len(entries)),
	}
	for r := range entries {
		t.ratios = append(t.ratios, r)
	}
	sort.Float64s(t.ratios)
	for _, r := range t.ratios {
		t.ks = append(t.ks, entries[r])
	}
	return t
}

// Lookup returns the K-factor for a radius/thickness ratio, linearly
// interpolating between table rows. The ratio is clamped to the table
// range before lookup.
func (t KTable) Lookup(ratio float64) float64 {
	if len(t.ratios) == 0 {
		return 0
	}
	if ratio <= t.ratios[0] {
		return t.ks[0]
	}
	last := len(t.ratios) - 1
	if ratio >= t.ratios[last] {
		return t.ks[last]
	}
	for i := 0; i < last; i++ {
		r1, r2 := t.ratios[i], t.ratios[i+1]
		if r1 <= ratio && ratio <= r2 {
			k1, k2 := t.ks[i], t.ks[i+1]
			return k1 + (k2-k1)*(ratio-r1)/(r2-r1)
		}
	}
	return t.ks[last]
}
