package devis

// Line is a priced quote line reduced to what the chantier side needs:
// designation, quantity and unit. Price and tax tokens present in the source
// are recognized during matching and discarded, never stored.
type Line struct {
	Code        string  `json:"code,omitempty"`
	Designation string  `json:"designation"`
	Quantite    float64 `json:"quantite"`
	Unite       string  `json:"unite"`
	Lot         string  `json:"lot,omitempty"`
	SousLot     string  `json:"sous_lot,omitempty"`
}

// Section is a structural heading of the quote: a lot (level 1) or a
// sous-lot (level >= 2). ParentCode is the enclosing lot's code and is empty
// for level-1 sections.
type Section struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	Level      int    `json:"level"`
	ParentCode string `json:"parent_code,omitempty"`
}

// Result is the output of one parse pass: line items and structure sections
// in order of first appearance, already deduplicated.
type Result struct {
	Lines     []Line    `json:"lines"`
	Structure []Section `json:"structure"`
}

// Empty reports whether the pass produced no priced lines. An empty result
// is a successful parse; the caller decides whether an all-structural or
// empty quote is acceptable.
func (r *Result) Empty() bool {
	return len(r.Lines) == 0
}
