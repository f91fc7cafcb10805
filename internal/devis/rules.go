package devis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the tunable pieces of the devis grammar: recognized unit
// tokens, boilerplate vocabulary and the thresholds used by the line
// reconstructor and classifier. The defaults target French construction
// quotes. A YAML file can override individual lists for tuning against a
// problematic PDF without a rebuild; the transforms themselves are fixed.
type Rules struct {
	// Units are the tokens accepted as the unit of a priced line
	// (area, length, count and lump-sum markers). Matched longest-first,
	// case-insensitively.
	Units []string `yaml:"units"`

	// BoilerplateTokens reject a whole line when contained
	// case-insensitively: registry numbers, contact labels, totals,
	// table headers, pagination and similar administrative noise.
	BoilerplateTokens []string `yaml:"boilerplate_tokens"`

	// StreetWords are the street-type abbreviations that identify an
	// address line ("1 All. Broerec", "12 rue ...").
	StreetWords []string `yaml:"street_words"`

	// MinDesignationLen is the minimum designation length (runes) after
	// cleaning for an item line to be kept.
	MinDesignationLen int `yaml:"min_designation_len"`

	// MinTitleLen is the minimum header title length (runes) after cleaning.
	MinTitleLen int `yaml:"min_title_len"`

	// OversizeLineLen is the length (runes) from which a reconstructed line
	// is assumed to still be several glued lines and gets re-split.
	OversizeLineLen int `yaml:"oversize_line_len"`

	// MinTextLen is the minimum extracted-text length (runes); shorter
	// inputs are rejected before parsing (scanned PDF, wrong file).
	MinTextLen int `yaml:"min_text_len"`
}

// DefaultRules returns the production grammar for French devis PDFs.
func DefaultRules() Rules {
	return Rules{
		Units: []string{"m²", "m2", "ml", "m", "u", "forfait", "ens", "lot"},
		BoilerplateTokens: []string{
			"siren", "siret", "tva", "email", "e-mail", "tél", "tel",
			"adresse", "france", "devis", "date", "valid", "conditions",
			"référence", "reference", "total ht", "total ttc", "total",
			"désignation qt", "designation qt", "prix u", "prix unitaire",
			"page", "client", "chantier",
		},
		StreetWords: []string{
			"all.", "avenue", "av.", "rue", "impasse", "bd", "boulevard",
			"chemin", "route",
		},
		MinDesignationLen: 4,
		MinTitleLen:       3,
		OversizeLineLen:   220,
		MinTextLen:        20,
	}
}

// LoadRules reads a YAML overrides file and merges it over the defaults.
// Empty lists and zero thresholds keep their default values.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var over Rules
	if err := yaml.Unmarshal(data, &over); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	r := DefaultRules()
	if len(over.Units) > 0 {
		r.Units = over.Units
	}
	if len(over.BoilerplateTokens) > 0 {
		r.BoilerplateTokens = over.BoilerplateTokens
	}
	if len(over.StreetWords) > 0 {
		r.StreetWords = over.StreetWords
	}
	if over.MinDesignationLen > 0 {
		r.MinDesignationLen = over.MinDesignationLen
	}
	if over.MinTitleLen > 0 {
		r.MinTitleLen = over.MinTitleLen
	}
	if over.OversizeLineLen > 0 {
		r.OversizeLineLen = over.OversizeLineLen
	}
	if over.MinTextLen > 0 {
		r.MinTextLen = over.MinTextLen
	}
	return r, nil
}
