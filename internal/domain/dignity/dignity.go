// Package dignity holds the static astrological lookup tables: essential
// dignity per (body, sign) and the traditional ruler of each sign.
//
// Both the sector and the dimension scorers read these tables; there is no
// second copy anywhere else.
package dignity

import "github.com/okian/celest/internal/domain/chart"

// Essential dignity modifiers.
const (
	Domicile           = 30
	Exaltation         = 20
	DomicileExaltation = 35
	Detriment          = -20
	Fall               = -20
	DetrimentAndFall   = -35
	Peregrine          = 0
	// BaseScore is the dignity score of a peregrine body.
	BaseScore = 50
)

// Table maps (body, sign) to an essential dignity modifier. Absent pairs are
// peregrine (0).
type Table struct {
	entries map[chart.Body]map[chart.Sign]int
}

// Entry is one row of a Table.
type Entry struct {
	Body     chart.Body
	Sign     chart.Sign
	Modifier int
}

// NewTable builds a table from explicit rows. Later rows override earlier ones.
func NewTable(rows ...Entry) *Table {
	t := &Table{entries: make(map[chart.Body]map[chart.Sign]int)}
	for _, r := range rows {
		t.set(r.Body, r.Sign, r.Modifier)
	}
	return t
}

func (t *Table) set(b chart.Body, s chart.Sign, v int) {
	m, ok := t.entries[b]
	if !ok {
		m = make(map[chart.Sign]int)
		t.entries[b] = m
	}
	m[s] = v
}

// Dignity returns the modifier for body b in sign s, 0 when absent.
func (t *Table) Dignity(b chart.Body, s chart.Sign) int {
	if t == nil {
		return Peregrine
	}
	return t.entries[b][s]
}

// Score is the dignity score used throughout the engine: 50 + Dignity.
func (t *Table) Score(b chart.Body, s chart.Sign) int {
	return BaseScore + t.Dignity(b, s)
}

// With returns a copy of t with additional rows applied on top.
func (t *Table) With(rows ...Entry) *Table {
	out := NewTable()
	if t != nil {
		for b, m := range t.entries {
			for s, v := range m {
				out.set(b, s, v)
			}
		}
	}
	for _, r := range rows {
		out.set(r.Body, r.Sign, r.Modifier)
	}
	return out
}

// placement lists the signs of each essential dignity class for one body.
type placement struct {
	domicile, exaltation, detriment, fall []chart.Sign
}

var traditional = map[chart.Body]placement{
	chart.Sun: {
		domicile: []chart.Sign{chart.Leo}, exaltation: []chart.Sign{chart.Aries},
		detriment: []chart.Sign{chart.Aquarius}, fall: []chart.Sign{chart.Libra},
	},
	chart.Moon: {
		domicile: []chart.Sign{chart.Cancer}, exaltation: []chart.Sign{chart.Taurus},
		detriment: []chart.Sign{chart.Capricorn}, fall: []chart.Sign{chart.Scorpio},
	},
	chart.Mercury: {
		domicile: []chart.Sign{chart.Gemini, chart.Virgo}, exaltation: []chart.Sign{chart.Virgo},
		detriment: []chart.Sign{chart.Sagittarius, chart.Pisces}, fall: []chart.Sign{chart.Pisces},
	},
	chart.Venus: {
		domicile: []chart.Sign{chart.Taurus, chart.Libra}, exaltation: []chart.Sign{chart.Pisces},
		detriment: []chart.Sign{chart.Aries, chart.Scorpio}, fall: []chart.Sign{chart.Virgo},
	},
	chart.Mars: {
		domicile: []chart.Sign{chart.Aries, chart.Scorpio}, exaltation: []chart.Sign{chart.Capricorn},
		detriment: []chart.Sign{chart.Taurus, chart.Libra}, fall: []chart.Sign{chart.Cancer},
	},
	chart.Jupiter: {
		domicile: []chart.Sign{chart.Sagittarius, chart.Pisces}, exaltation: []chart.Sign{chart.Cancer},
		detriment: []chart.Sign{chart.Gemini, chart.Virgo}, fall: []chart.Sign{chart.Capricorn},
	},
	chart.Saturn: {
		domicile: []chart.Sign{chart.Capricorn, chart.Aquarius}, exaltation: []chart.Sign{chart.Libra},
		detriment: []chart.Sign{chart.Cancer, chart.Leo}, fall: []chart.Sign{chart.Aries},
	},
	chart.Uranus: {
		domicile: []chart.Sign{chart.Aquarius}, exaltation: []chart.Sign{chart.Scorpio},
		detriment: []chart.Sign{chart.Leo}, fall: []chart.Sign{chart.Taurus},
	},
	chart.Neptune: {
		domicile: []chart.Sign{chart.Pisces}, exaltation: []chart.Sign{chart.Leo},
		detriment: []chart.Sign{chart.Virgo}, fall: []chart.Sign{chart.Aquarius},
	},
	chart.Pluto: {
		domicile: []chart.Sign{chart.Scorpio}, exaltation: []chart.Sign{chart.Aries},
		detriment: []chart.Sign{chart.Taurus}, fall: []chart.Sign{chart.Libra},
	},
}

func contains(signs []chart.Sign, s chart.Sign) bool {
	for _, x := range signs {
		if x == s {
			return true
		}
	}
	return false
}

// classify folds the dignity classes of one (body, sign) pair into a modifier.
// A sign that is both domicile and exaltation (Mercury in Virgo) scores +35;
// both detriment and fall (Mercury in Pisces) scores -35.
func classify(p placement, s chart.Sign) int {
	dom, exa := contains(p.domicile, s), contains(p.exaltation, s)
	det, fal := contains(p.detriment, s), contains(p.fall, s)
	switch {
	case dom && exa:
		return DomicileExaltation
	case dom:
		return Domicile
	case exa:
		return Exaltation
	case det && fal:
		return DetrimentAndFall
	case det:
		return Detriment
	case fal:
		return Fall
	default:
		return Peregrine
	}
}

// Traditional returns the standard dignity table.
func Traditional() *Table {
	t := NewTable()
	for _, b := range chart.Bodies {
		p := traditional[b]
		for s := chart.Aries; s <= chart.Pisces; s++ {
			if v := classify(p, s); v != Peregrine {
				t.set(b, s, v)
			}
		}
	}
	return t
}

var rulers = [chart.SignCount]chart.Body{
	chart.Aries:       chart.Mars,
	chart.Taurus:      chart.Venus,
	chart.Gemini:      chart.Mercury,
	chart.Cancer:      chart.Moon,
	chart.Leo:         chart.Sun,
	chart.Virgo:       chart.Mercury,
	chart.Libra:       chart.Venus,
	chart.Scorpio:     chart.Mars,
	chart.Sagittarius: chart.Jupiter,
	chart.Capricorn:   chart.Saturn,
	chart.Aquarius:    chart.Saturn,
	chart.Pisces:      chart.Jupiter,
}

// RulerOf returns the traditional ruler of a sign.
func RulerOf(s chart.Sign) chart.Body {
	return rulers[int(s.Add(0))]
}
