package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poppadum/dynquee-go/internal/config"
	"github.com/poppadum/dynquee-go/internal/dynevent"
)

func newTestConfig(t *testing.T, mediaPath string, rules map[string]string, defaultRule string) *config.Config {
	t.Helper()
	return &config.Config{
		Media: config.Media{
			MediaPath:    mediaPath,
			DefaultImage: "default.png",
			Default:      defaultRule,
			Rules:        rules,
		},
	}
}

func mkMediaTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, contents := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
	return root
}

// S1: ROM match wins, case-insensitively.
func TestResolveS1RomMatchCaseInsensitive(t *testing.T) {
	root := mkMediaTree(t, map[string]string{"mame/chasehq.png": "x"})
	cfg := newTestConfig(t, root, map[string]string{
		"rungame": "rom scraped publisher system genre generic",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("rungame", map[string]string{
		dynevent.KeySystemId: "MAME",
		dynevent.KeyGamePath: "/roms/mame/chaseHQ.zip",
		dynevent.KeyPublisher: "Taito",
	})
	got := r.Resolve(ev)
	want := filepath.Join(root, "mame", "chasehq.png")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Resolve() = %v, want [%s]", got, want)
	}
}

// S2: ROM missing, falls through to publisher match.
func TestResolveS2PublisherFallback(t *testing.T) {
	root := mkMediaTree(t, map[string]string{"publisher/taito.png": "x"})
	cfg := newTestConfig(t, root, map[string]string{
		"rungame": "rom scraped publisher system genre generic",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("rungame", map[string]string{
		dynevent.KeySystemId:  "mame",
		dynevent.KeyGamePath:  "/roms/mame/chaseHQ.zip",
		dynevent.KeyPublisher: "Taito",
	})
	got := r.Resolve(ev)
	want := filepath.Join(root, "publisher", "taito.png")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Resolve() = %v, want [%s]", got, want)
	}
}

// S3: scraped ImagePath wins outright, verbatim (no media dir lookup).
func TestResolveS3ScrapedImage(t *testing.T) {
	root := mkMediaTree(t, map[string]string{})
	cfg := newTestConfig(t, root, map[string]string{
		"rungame": "rom scraped publisher system genre generic",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("rungame", map[string]string{
		dynevent.KeyImagePath: "/path/to/scraped.jpg",
	})
	got := r.Resolve(ev)
	if len(got) != 1 || got[0] != "/path/to/scraped.jpg" {
		t.Fatalf("Resolve() = %v, want [/path/to/scraped.jpg]", got)
	}
}

// S4: unknown action falls back to default=generic; expect both generic
// files, in canonical (sorted) order.
func TestResolveS4DefaultGenericBothFiles(t *testing.T) {
	root := mkMediaTree(t, map[string]string{
		"generic/b.png": "x",
		"generic/a.png": "x",
	})
	cfg := newTestConfig(t, root, map[string]string{}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("unknownaction", map[string]string{})
	got := r.Resolve(ev)
	wantA := filepath.Join(root, "generic", "a.png")
	wantB := filepath.Join(root, "generic", "b.png")
	if len(got) != 2 || got[0] != wantA || got[1] != wantB {
		t.Fatalf("Resolve() = %v, want [%s %s]", got, wantA, wantB)
	}
}

// S5: compound term concatenates matches from each subterm, in order.
func TestResolveS5CompoundConcatenation(t *testing.T) {
	root := mkMediaTree(t, map[string]string{
		"mame/chasehq.png":       "x",
		"publisher/taito.png":    "x",
	})
	cfg := newTestConfig(t, root, map[string]string{
		"rungame": "rom+publisher+system",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("rungame", map[string]string{
		dynevent.KeySystemId:  "mame",
		dynevent.KeyGamePath:  "/roms/mame/chaseHQ.zip",
		dynevent.KeyPublisher: "Taito",
	})
	got := r.Resolve(ev)
	wantRom := filepath.Join(root, "mame", "chasehq.png")
	wantPub := filepath.Join(root, "publisher", "taito.png")
	if len(got) != 2 || got[0] != wantRom || got[1] != wantPub {
		t.Fatalf("Resolve() = %v, want [%s %s]", got, wantRom, wantPub)
	}
}

// Property 6: last-resort default image when nothing matches and no blank.
func TestResolveLastResortDefaultImage(t *testing.T) {
	root := mkMediaTree(t, map[string]string{})
	cfg := newTestConfig(t, root, map[string]string{
		"rungame": "rom publisher",
	}, "rom publisher")
	r := New(cfg)
	ev := dynevent.NewEvent("rungame", map[string]string{})
	got := r.Resolve(ev)
	want := filepath.Join(root, "default.png")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Resolve() = %v, want [%s]", got, want)
	}
}

// blank terminates evaluation and returns an empty set, bypassing default.
func TestResolveBlankReturnsEmptySet(t *testing.T) {
	root := mkMediaTree(t, map[string]string{})
	cfg := newTestConfig(t, root, map[string]string{
		"sleep": "blank",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("sleep", map[string]string{})
	got := r.Resolve(ev)
	if len(got) != 0 {
		t.Fatalf("Resolve() = %v, want empty set", got)
	}
}

// Unknown rule term is skipped with a warning, not an error.
func TestResolveUnknownTermSkipped(t *testing.T) {
	root := mkMediaTree(t, map[string]string{"generic/a.png": "x"})
	cfg := newTestConfig(t, root, map[string]string{
		"rungame": "bogusterm generic",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("rungame", map[string]string{})
	got := r.Resolve(ev)
	want := filepath.Join(root, "generic", "a.png")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Resolve() = %v, want [%s]", got, want)
	}
}

// Property 5: glob matching is case-insensitive on every path component.
func TestResolveGlobCaseInsensitive(t *testing.T) {
	root := mkMediaTree(t, map[string]string{"SYSTEM/Snes.PNG": "x"})
	cfg := newTestConfig(t, root, map[string]string{
		"systembrowsing": "system generic",
	}, "generic")
	r := New(cfg)
	ev := dynevent.NewEvent("systembrowsing", map[string]string{
		dynevent.KeySystemId: "snes",
	})
	got := r.Resolve(ev)
	want := filepath.Join(root, "SYSTEM", "Snes.PNG")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("Resolve() = %v, want [%s]", got, want)
	}
}

func TestStartupMedia(t *testing.T) {
	root := mkMediaTree(t, map[string]string{
		"startup/logo.png": "x",
		"startup/intro.mp4": "x",
	})
	cfg := newTestConfig(t, root, map[string]string{}, "generic")
	r := New(cfg)
	got := r.StartupMedia()
	if len(got) != 2 {
		t.Fatalf("StartupMedia() = %v, want 2 files", got)
	}
}
