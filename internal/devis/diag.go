package devis

// Rejection records a dropped logical line and why, for the debug path only.
type Rejection struct {
	Line   string `json:"line"`
	Reason string `json:"reason"`
}

func reject(diag *[]Rejection, line, reason string) {
	if diag == nil {
		return
	}
	*diag = append(*diag, Rejection{Line: line, Reason: reason})
}
