// Package resolver translates a front-end event into an ordered set of
// media file paths using the config-defined precedence-rule language
// described in spec.md §4.2.
package resolver

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/poppadum/dynquee-go/internal/config"
	"github.com/poppadum/dynquee-go/internal/dynevent"
	"github.com/poppadum/dynquee-go/internal/media"
)

// Resolver evaluates PrecedenceRules against the configured media library.
type Resolver struct {
	cfg *config.Config
}

// New creates a Resolver bound to cfg's [media] section.
func New(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve returns the media set for ev's action, per spec.md §4.2: evaluate
// the configured precedence rule term by term, returning the first
// non-empty match; if a `blank` term is reached first, return an empty
// set; if the rule is exhausted with no match and no blank, return the
// default image as last resort.
func (r *Resolver) Resolve(ev dynevent.Event) media.Set {
	terms := ParseRule(r.cfg.Media.Rule(ev.Action))
	for _, t := range terms {
		files, matched, blanked := r.evalTerm(t, ev)
		if blanked {
			return media.Set{}
		}
		if matched {
			return media.Set(files)
		}
	}
	return media.Set{filepath.Join(r.cfg.Media.MediaPath, r.cfg.Media.DefaultImage)}
}

// StartupMedia returns the expansion of the `startup` template, used once
// at program start.
func (r *Resolver) StartupMedia() media.Set {
	files := findMediaFiles(r.cfg.Media.MediaPath, "startup", "", true)
	return media.Set(files)
}

// evalTerm evaluates a single (possibly compound) rule term.
// matched is true when files is non-empty and should end rule evaluation
// as the result; blanked is true for a top-level `blank` term, which ends
// evaluation with an empty set (matched is then false).
func (r *Resolver) evalTerm(t Term, ev dynevent.Event) (files []string, matched bool, blanked bool) {
	if t.IsCompound() {
		var all []string
		for i, k := range t.Sub {
			sub, sMatched, sBlanked := r.evalSingle(k, t.SubRaw[i], ev)
			if sBlanked {
				// blank inside a compound contributes nothing but does not
				// itself terminate rule evaluation; only a standalone
				// top-level `blank` term does that.
				continue
			}
			if sMatched {
				all = append(all, sub...)
			}
		}
		return all, len(all) > 0, false
	}
	return r.evalSingle(t.Kind, t.Raw, ev)
}

func (r *Resolver) evalSingle(kind TermKind, raw string, ev dynevent.Event) (files []string, matched bool, blanked bool) {
	switch kind {
	case TermBlank:
		return nil, false, true

	case TermScraped:
		img := ev.Get(dynevent.KeyImagePath)
		if img == "" {
			return nil, false, false
		}
		return []string{img}, true, false

	case TermRom:
		systemId := strings.ToLower(ev.Get(dynevent.KeySystemId))
		stem := gameBasename(ev.Get(dynevent.KeyGamePath))
		f := findMediaFiles(r.cfg.Media.MediaPath, systemId, stem, false)
		return f, len(f) > 0, false

	case TermPublisher:
		publisher := strings.ToLower(ev.Get(dynevent.KeyPublisher))
		f := findMediaFiles(r.cfg.Media.MediaPath, "publisher", publisher, false)
		return f, len(f) > 0, false

	case TermGenre:
		genre := strings.ToLower(ev.Get(dynevent.KeyGenre))
		f := findMediaFiles(r.cfg.Media.MediaPath, "genre", genre, false)
		return f, len(f) > 0, false

	case TermSystem:
		systemId := strings.ToLower(ev.Get(dynevent.KeySystemId))
		f := findMediaFiles(r.cfg.Media.MediaPath, "system", systemId, false)
		return f, len(f) > 0, false

	case TermGeneric:
		f := findMediaFiles(r.cfg.Media.MediaPath, "generic", "", true)
		return f, len(f) > 0, false

	case TermScreensaver:
		f := findMediaFiles(r.cfg.Media.MediaPath, "screensaver", "", true)
		return f, len(f) > 0, false

	case TermStartup:
		f := findMediaFiles(r.cfg.Media.MediaPath, "startup", "", true)
		return f, len(f) > 0, false

	default:
		slog.Warn("skipped unrecognised precedence rule term", "term", raw)
		return nil, false, false
	}
}

// gameBasename returns the file-name portion of gamePath with its last
// extension removed.
func gameBasename(gamePath string) string {
	base := filepath.Base(gamePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
