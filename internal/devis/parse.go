package devis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrTextTooShort signals input below the minimum length; parsing is not
// attempted. Typically a scanned PDF whose extraction produced nothing
// usable.
var ErrTextTooShort = errors.New("extracted text too short")

// Parse runs one full pass over extracted devis text: logical line
// reconstruction, boilerplate filtering, item/header classification with
// lot and sous-lot tracking, and exact-key deduplication. The result keeps
// input order. A pass with zero priced lines is a successful parse.
func (p *Parser) Parse(text string) (*Result, error) {
	return p.parse(text, nil)
}

// Debug is Parse plus the diagnostic channel: every dropped line with its
// reason tag, for tuning the heuristics against a real PDF. The production
// path never collects rejections.
func (p *Parser) Debug(text string) (*Result, []Rejection, error) {
	var rejected []Rejection
	res, err := p.parse(text, &rejected)
	return res, rejected, err
}

func (p *Parser) parse(text string, diag *[]Rejection) (*Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < p.rules.MinTextLen {
		return nil, ErrTextTooShort
	}

	res := &Result{}
	seenLine := make(map[string]bool)
	seenSection := make(map[string]bool)

	// Hierarchy accumulator: the active lot (level 1) and sous-lot
	// (level >= 2). Strictly sequential; line order is significant.
	var curLotTitle, curLotCode, curSousLot string

	for _, line := range p.LogicalLines(text) {
		if p.isBoilerplate(line) {
			reject(diag, line, "boilerplate")
			continue
		}

		// Priced line item first: an item line may itself start with a
		// hierarchy code.
		item, itemReason := p.matchItem(line)
		if item != nil {
			item.Lot = curLotTitle
			item.SousLot = curSousLot

			key := lineKey(item)
			if seenLine[key] {
				reject(diag, line, "duplicate line")
				continue
			}
			seenLine[key] = true
			res.Lines = append(res.Lines, *item)
			continue
		}

		header, headerReason := p.matchHeader(line)
		if header == nil {
			switch {
			case itemReason != "":
				reject(diag, line, itemReason)
			case headerReason != "":
				reject(diag, line, headerReason)
			default:
				reject(diag, line, "no match")
			}
			continue
		}

		if header.level == 1 {
			curLotTitle = header.title
			curLotCode = header.code
			curSousLot = ""

			key := sectionKey(header, "")
			if seenSection[key] {
				reject(diag, line, "duplicate section")
				continue
			}
			seenSection[key] = true
			res.Structure = append(res.Structure, Section{
				Code:  header.code,
				Title: header.title,
				Level: 1,
			})
			continue
		}

		// A sous-lot needs an enclosing lot to attach to.
		if curLotCode == "" {
			reject(diag, line, "sous-lot without lot")
			continue
		}
		curSousLot = header.title

		key := sectionKey(header, curLotCode)
		if seenSection[key] {
			reject(diag, line, "duplicate section")
			continue
		}
		seenSection[key] = true
		res.Structure = append(res.Structure, Section{
			Code:       header.code,
			Title:      header.title,
			Level:      header.level,
			ParentCode: curLotCode,
		})
	}

	return res, nil
}

// lineKey is the exact-match dedup key for an item: repeated page content
// yields identical keys and only the first occurrence is kept.
func lineKey(l *Line) string {
	return strings.ToLower(strings.Join([]string{
		l.Designation,
		strconv.FormatFloat(l.Quantite, 'f', -1, 64),
		l.Unite,
		l.Lot,
		l.SousLot,
	}, "|"))
}

func sectionKey(h *headerMatch, parentCode string) string {
	k := fmt.Sprintf("l%d|%s|%s", h.level, h.code, h.title)
	if parentCode != "" {
		k += "|" + parentCode
	}
	return strings.ToLower(k)
}
