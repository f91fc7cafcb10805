package devis

import (
	"strings"
	"testing"
)

func TestMatchItem_FullPricedRow(t *testing.T) {
	p := NewParser(DefaultRules())

	item, reason := p.matchItem("1.2.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %")
	if item == nil {
		t.Fatalf("expected an item, got rejection %q", reason)
	}
	if item.Code != "1.2.1" {
		t.Errorf("code: expected %q, got %q", "1.2.1", item.Code)
	}
	if item.Designation != "Dépose de cloison existante" {
		t.Errorf("designation: expected %q, got %q", "Dépose de cloison existante", item.Designation)
	}
	if item.Quantite != 69.5 {
		t.Errorf("quantite: expected 69.5, got %v", item.Quantite)
	}
	if item.Unite != "m²" {
		t.Errorf("unite: expected %q, got %q", "m²", item.Unite)
	}
}

func TestMatchItem_UppercaseUnit(t *testing.T) {
	p := NewParser(DefaultRules())

	item, _ := p.matchItem("1.3.1 Dépose du bloc WC 1,00 U 157,50 € 10,00 %")
	if item == nil {
		t.Fatal("expected an item")
	}
	if item.Quantite != 1.0 || item.Unite != "U" {
		t.Errorf("unexpected quantity/unit: %v %q", item.Quantite, item.Unite)
	}
}

func TestMatchItem_WithoutCode(t *testing.T) {
	p := NewParser(DefaultRules())

	item, _ := p.matchItem("Evacuation des gravats 3,00 u")
	if item == nil {
		t.Fatal("expected an item")
	}
	if item.Code != "" {
		t.Errorf("expected empty code, got %q", item.Code)
	}
	if item.Designation != "Evacuation des gravats" {
		t.Errorf("unexpected designation %q", item.Designation)
	}
}

func TestMatchItem_Rejections(t *testing.T) {
	p := NewParser(DefaultRules())

	cases := []struct {
		name string
		line string
	}{
		{"zero quantity", "Dépose de cloison vétuste 0 m²"},
		{"no quantity", "Nettoyage complet du chantier"},
		{"no unit", "Nettoyage final 2,00"},
		{"designation too short", "Ab 2,00 m²"},
		{"all caps place name", "PLESCOP CENTRE 2,00 m²"},
	}
	for _, c := range cases {
		if item, _ := p.matchItem(c.line); item != nil {
			t.Errorf("%s: expected rejection for %q, got item %+v", c.name, c.line, item)
		}
	}
}

func TestMatchItem_NeverKeepsPriceOrTax(t *testing.T) {
	p := NewParser(DefaultRules())

	lines := []string{
		"Pose de carrelage sol 12,00 m² 45,00 € 20,00 %",
		"1.1 Fourniture de porte alvéolaire 2,00 u 85,00 €",
		"Peinture des plafonds TOTAL HT 30,00 m2",
	}
	for _, l := range lines {
		item, reason := p.matchItem(l)
		if item == nil {
			t.Fatalf("expected item for %q, got rejection %q", l, reason)
		}
		for _, forbidden := range []string{"€", "%", "total", "ht"} {
			if strings.Contains(strings.ToLower(item.Designation), forbidden) {
				t.Errorf("designation %q still carries %q", item.Designation, forbidden)
			}
		}
	}
}

func TestCleanDesignation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.2 Peinture des murs 150,00 €", "Peinture des murs"},
		{"Remise commerciale 10,00 %", "Remise commerciale"},
		{"Pose de parquet TOTAL HT 1200", "Pose de parquet"},
		{"  Dépose   de cloison  ", "Dépose de cloison"},
	}
	for _, c := range cases {
		if got := cleanDesignation(c.in); got != c.want {
			t.Errorf("cleanDesignation(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMatchHeader(t *testing.T) {
	p := NewParser(DefaultRules())

	cases := []struct {
		line  string
		code  string
		title string
		level int
	}{
		{"1 Démolition", "1", "Démolition", 1},
		{"1.2 Cloisons et doublages", "1.2", "Cloisons et doublages", 2},
		{"1.2.3 Faïence murale", "1.2.3", "Faïence murale", 3},
	}
	for _, c := range cases {
		h, reason := p.matchHeader(c.line)
		if h == nil {
			t.Fatalf("expected header for %q, got rejection %q", c.line, reason)
		}
		if h.code != c.code || h.title != c.title || h.level != c.level {
			t.Errorf("matchHeader(%q) = %+v, want {%s %s %d}", c.line, h, c.code, c.title, c.level)
		}
	}
}

func TestMatchHeader_Rejections(t *testing.T) {
	p := NewParser(DefaultRules())

	if h, _ := p.matchHeader("Sans code numérique"); h != nil {
		t.Errorf("expected no header without a code, got %+v", h)
	}
	if h, reason := p.matchHeader("1 Ab"); h != nil || reason != "title too short" {
		t.Errorf("expected short-title rejection, got %+v %q", h, reason)
	}
	if h, reason := p.matchHeader("2 Adresse du dépôt"); h != nil || reason != "title is boilerplate" {
		t.Errorf("expected boilerplate-title rejection, got %+v %q", h, reason)
	}
}
