package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleINI = `
[recalbox]
host = localhost
port = 1883
keepalive = 60
topic = Recalbox/EmulationStation/Event
is_local = true
es_state_local_file = /tmp/es_state.inf

[media]
media_path = /media
default_image = default.png
video_file_extensions = .mp4 .mkv
arcade_system_enabled = true
arcade_systems = fba neogeo mame
default = generic
rungame = rom scraped publisher system genre generic

[slideshow]
image_display_time = 10
max_video_time = 120
time_between_slides = 1
shuffle = true
terminate_viewer = false
viewer = fbv
viewer_opts = -d 1
video_player = omxplayer
video_player_opts = -o hdmi
clear_cmd = fbv
clear_cmd_opts = -c

[change]
systembrowsing = system
gamelistbrowsing = system/game
rungame = always
endgame = always
`

func writeTempINI(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dynquee.ini")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp ini: %v", err)
	}
	return path
}

func TestLoadParsesAllSections(t *testing.T) {
	path := writeTempINI(t, sampleINI)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Recalbox.Host != "localhost" || cfg.Recalbox.Port != 1883 {
		t.Fatalf("unexpected recalbox section: %+v", cfg.Recalbox)
	}
	if cfg.Media.MediaPath != "/media" || cfg.Media.Default != "generic" {
		t.Fatalf("unexpected media section: %+v", cfg.Media)
	}
	if got := cfg.Media.Rule("rungame"); got != "rom scraped publisher system genre generic" {
		t.Fatalf("Rule(rungame) = %q", got)
	}
	if got := cfg.Media.Rule("unknownaction"); got != "generic" {
		t.Fatalf("Rule(unknownaction) = %q, want fallback to default", got)
	}
	if !cfg.Media.IsArcadeSystem("FBA") {
		t.Fatalf("expected FBA to be an arcade system (case-insensitive)")
	}
	if !cfg.Media.IsVideo("/media/clip.MP4") {
		t.Fatalf("expected .MP4 to be recognised as video (case-insensitive)")
	}
	if cfg.Media.IsVideo("/media/pic.png") {
		t.Fatalf("did not expect .png to be a video")
	}

	if cfg.Change.Rule("systembrowsing") != "system" {
		t.Fatalf("Change.Rule(systembrowsing) = %q", cfg.Change.Rule("systembrowsing"))
	}
	if cfg.Change.Rule("never-configured") != "never" {
		t.Fatalf("Change.Rule default should be 'never'")
	}

	if cfg.Slideshow.Viewer != "fbv" || cfg.Slideshow.ImageDisplayTime != 10 {
		t.Fatalf("unexpected slideshow section: %+v", cfg.Slideshow)
	}
}

func TestLoadMissingDefaultFails(t *testing.T) {
	path := writeTempINI(t, "[media]\nmedia_path = /media\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error when [media] default is missing")
	}
}
