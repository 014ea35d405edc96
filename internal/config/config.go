// Package config loads dynquee's single INI configuration file into typed
// sections, the way the teacher's own config layer loaded settings from a
// single backing store into an in-memory cache at construction time.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Recalbox holds the [recalbox] broker-connection section.
type Recalbox struct {
	Host             string
	Port             int
	Keepalive        int
	Topic            string
	IsLocal          bool
	ESStateLocalFile string
	ESStateRemoteURL string
}

// Media holds the [media] section: the library root, default image, video
// extension list, arcade remap settings, and one precedence rule per action.
type Media struct {
	MediaPath           string
	DefaultImage        string
	VideoFileExtensions []string
	ArcadeEnabled       bool
	ArcadeSystems       map[string]struct{}
	Default             string
	Rules               map[string]string // action -> raw precedence rule string
}

// Rule returns the raw precedence rule configured for action, falling back
// to the mandatory `default` entry when action has no specific entry.
func (m Media) Rule(action string) string {
	if r, ok := m.Rules[action]; ok {
		return r
	}
	return m.Default
}

// IsArcadeSystem reports whether systemId is configured as an arcade
// meta-system alias.
func (m Media) IsArcadeSystem(systemId string) bool {
	_, ok := m.ArcadeSystems[strings.ToLower(systemId)]
	return ok
}

// IsVideo reports whether path has one of the configured video extensions.
func (m Media) IsVideo(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range m.VideoFileExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Slideshow holds the [slideshow] section.
type Slideshow struct {
	ImageDisplayTime         float64
	MaxVideoTime             float64
	TimeBetweenSlides        float64
	Shuffle                  bool
	TerminateViewer          bool
	Viewer                   string
	ViewerOpts               string
	VideoPlayer              string
	VideoPlayerOpts          string
	ClearCmd                 string
	ClearCmdOpts             string
	FramebufferResolutionCmd string
	SubprocessTimeout        float64
}

// Change holds the [change] section: per-action state-change rules.
type Change struct {
	Rules map[string]string // action -> never|always|action|system|game|system/game
}

// Rule returns the configured state-change rule for action, defaulting to
// "never" when no entry exists, per spec.
func (c Change) Rule(action string) string {
	if r, ok := c.Rules[action]; ok {
		return r
	}
	return "never"
}

// Config is the fully parsed dynquee.ini file.
type Config struct {
	Recalbox  Recalbox
	Media     Media
	Slideshow Slideshow
	Change    Change
}

// Load parses the INI file at path into a Config.
func Load(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	cfg := &Config{}

	rb := f.Section("recalbox")
	cfg.Recalbox = Recalbox{
		Host:             rb.Key("host").String(),
		Port:             rb.Key("port").MustInt(1883),
		Keepalive:        rb.Key("keepalive").MustInt(60),
		Topic:            rb.Key("topic").String(),
		IsLocal:          rb.Key("is_local").MustBool(true),
		ESStateLocalFile: rb.Key("es_state_local_file").String(),
		ESStateRemoteURL: rb.Key("es_state_remote_url").String(),
	}

	ms := f.Section("media")
	mediaDefault := ms.Key("default").String()
	if mediaDefault == "" {
		return nil, fmt.Errorf("config: [media] default is required")
	}
	rules := make(map[string]string)
	arcadeSystems := make(map[string]struct{})
	for _, k := range ms.Keys() {
		switch k.Name() {
		case "media_path", "default_image", "video_file_extensions",
			"arcade_system_enabled", "arcade_systems", "default":
			continue
		default:
			rules[k.Name()] = k.String()
		}
	}
	for _, s := range strings.Fields(ms.Key("arcade_systems").String()) {
		arcadeSystems[strings.ToLower(s)] = struct{}{}
	}
	cfg.Media = Media{
		MediaPath:           ms.Key("media_path").String(),
		DefaultImage:        ms.Key("default_image").String(),
		VideoFileExtensions: strings.Fields(strings.ToLower(ms.Key("video_file_extensions").String())),
		ArcadeEnabled:       ms.Key("arcade_system_enabled").MustBool(false),
		ArcadeSystems:       arcadeSystems,
		Default:             mediaDefault,
		Rules:               rules,
	}

	sl := f.Section("slideshow")
	cfg.Slideshow = Slideshow{
		ImageDisplayTime:         sl.Key("image_display_time").MustFloat64(10),
		MaxVideoTime:             sl.Key("max_video_time").MustFloat64(120),
		TimeBetweenSlides:        sl.Key("time_between_slides").MustFloat64(1),
		Shuffle:                  sl.Key("shuffle").MustBool(true),
		TerminateViewer:          sl.Key("terminate_viewer").MustBool(false),
		Viewer:                   sl.Key("viewer").String(),
		ViewerOpts:               sl.Key("viewer_opts").String(),
		VideoPlayer:              sl.Key("video_player").String(),
		VideoPlayerOpts:          sl.Key("video_player_opts").String(),
		ClearCmd:                 sl.Key("clear_cmd").String(),
		ClearCmdOpts:             sl.Key("clear_cmd_opts").String(),
		FramebufferResolutionCmd: sl.Key("framebuffer_resolution_cmd").String(),
		SubprocessTimeout:        sl.Key("subprocess_timeout").MustFloat64(3),
	}

	chSection := f.Section("change")
	chRules := make(map[string]string)
	for _, k := range chSection.Keys() {
		chRules[k.Name()] = k.String()
	}
	cfg.Change = Change{Rules: chRules}

	return cfg, nil
}
