package resolver

import "strings"

// TermKind tags the variant of a single rule term, parsed once from config
// and dispatched on during evaluation (the "tagged variant" spec.md's
// Design Notes recommend in place of the source's string-keyed dispatch).
type TermKind int

const (
	TermUnknown TermKind = iota
	TermBlank
	TermScraped
	TermRom
	TermPublisher
	TermGenre
	TermSystem
	TermGeneric
	TermScreensaver
	TermStartup
)

var termNames = map[string]TermKind{
	"blank":       TermBlank,
	"scraped":     TermScraped,
	"rom":         TermRom,
	"publisher":   TermPublisher,
	"genre":       TermGenre,
	"system":      TermSystem,
	"generic":     TermGeneric,
	"screensaver": TermScreensaver,
	"startup":     TermStartup,
}

// Term is one element of a PrecedenceRule: a single reserved/pattern word,
// or a "+"-joined compound of several.
type Term struct {
	Kind    TermKind
	Sub     []TermKind // populated only when len > 1 (a compound term)
	Raw     string     // original text, for logging unknown terms
	SubRaw  []string   // raw subterm text, parallel to Sub, for logging
}

// IsCompound reports whether this term is a "+"-joined union of subterms.
func (t Term) IsCompound() bool {
	return len(t.Sub) > 1
}

// ParseRule splits a whitespace-separated PrecedenceRule string into its
// ordered Terms, further splitting each on "+" for compound terms.
func ParseRule(raw string) []Term {
	fields := strings.Fields(raw)
	terms := make([]Term, 0, len(fields))
	for _, f := range fields {
		parts := strings.Split(f, "+")
		if len(parts) == 1 {
			terms = append(terms, Term{Kind: kindOf(parts[0]), Raw: parts[0]})
			continue
		}
		t := Term{Raw: f, SubRaw: parts}
		for _, p := range parts {
			t.Sub = append(t.Sub, kindOf(p))
		}
		terms = append(terms, t)
	}
	return terms
}

func kindOf(word string) TermKind {
	if k, ok := termNames[word]; ok {
		return k
	}
	return TermUnknown
}
