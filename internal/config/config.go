// Package config holds the composition settings for a run. A Config is
// resolved once by the caller and treated as read-only by every component.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectMode selects which assembly path the pipeline takes.
type ProjectMode string

const (
	ModeSlideshow  ProjectMode = "slideshow"
	ModeMontage    ProjectMode = "montage"
	ModeVideosOnly ProjectMode = "videos_only"
)

// Valid reports whether the mode is one of the known project modes.
func (m ProjectMode) Valid() bool {
	switch m {
	case ModeSlideshow, ModeMontage, ModeVideosOnly:
		return true
	}
	return false
}

// Config holds all composition settings
type Config struct {
	// Timeline settings
	ImageDuration     float64     `yaml:"image_duration"`
	CrossfadeDuration float64     `yaml:"crossfade_duration"`
	UseCrossfade      bool        `yaml:"use_crossfade"`
	UseFadeIn         bool        `yaml:"use_fade_in"`
	UseFadeOut        bool        `yaml:"use_fade_out"`
	BlackFade         bool        `yaml:"black_fade_transition"`
	ProjectMode       ProjectMode `yaml:"project_type"`
	AnimationStyle    string      `yaml:"animation_style"`

	// Audio settings
	MainAudioVolume float64 `yaml:"main_audio_vol"`
	BGVolume        float64 `yaml:"bg_vol"`
	UseBGMusic      bool    `yaml:"use_bg_music"`

	// Overlay settings
	UseOverlay     bool    `yaml:"use_overlay"`
	OverlayMode    string  `yaml:"overlay_mode"` // "simple" or "screen_blend"
	OverlayOpacity float64 `yaml:"overlay_opacity"`

	// Encoder settings
	EncoderMode string `yaml:"encoder_mode"` // auto, software, nvidia, amd, intel
	CRF         int    `yaml:"crf"`
	Preset      string `yaml:"preset"`

	// Caption settings
	Captions CaptionConfig `yaml:"captions"`

	// Global assets used when a project folder supplies none
	Assets AssetConfig `yaml:"assets"`
}

// CaptionConfig holds caption generation and styling settings
type CaptionConfig struct {
	Enabled          bool   `yaml:"enabled"`
	LayoutType       string `yaml:"layout_type"` // "single" or "multi"
	Animation        string `yaml:"animation"`   // normal, word_by_word, single_words
	WordByWord       bool   `yaml:"word_by_word_enabled"`
	LiveTiming       bool   `yaml:"live_timing_enabled"`
	KaraokeEffect    bool   `yaml:"karaoke_effect_enabled"`
	Engine           string `yaml:"engine"` // "whisper" or "faster_whisper"
	Model            string `yaml:"model"`
	MaxCharsPerLine  int    `yaml:"max_chars_per_line"`
	FontFamily       string `yaml:"font_family"`
	FontFile         string `yaml:"font_file"`
	FontSize         int    `yaml:"font_size"`
	FontWeight       string `yaml:"font_weight"` // "bold" or "normal"
	TextColor        string `yaml:"text_color"`
	OutlineColor     string `yaml:"outline_color"`
	OutlineWidth     int    `yaml:"outline_width"`
	VerticalPos      string `yaml:"vertical_position"`   // top, center, bottom
	HorizontalPos    string `yaml:"horizontal_position"` // left, center, right
	MarginVertical   int    `yaml:"margin_vertical"`
	MarginHorizontal int    `yaml:"margin_horizontal"`
}

// AssetConfig points at shared asset files applied to every project
type AssetConfig struct {
	Overlay  string `yaml:"overlay"`
	BGMusic  string `yaml:"bg_music"`
	FontFile string `yaml:"font_file"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		ImageDuration:     8.0,
		CrossfadeDuration: 0.6,
		UseCrossfade:      true,
		UseFadeIn:         true,
		UseFadeOut:        true,
		ProjectMode:       ModeMontage,
		AnimationStyle:    "sequential",
		MainAudioVolume:   1.0,
		BGVolume:          0.15,
		UseBGMusic:        true,
		OverlayMode:       "simple",
		OverlayOpacity:    0.5,
		EncoderMode:       "auto",
		CRF:               22,
		Preset:            "fast",
		Captions: CaptionConfig{
			LayoutType:       "single",
			Animation:        "normal",
			Engine:           "whisper",
			Model:            "base",
			MaxCharsPerLine:  45,
			FontFamily:       "Arial",
			FontSize:         24,
			FontWeight:       "bold",
			TextColor:        "#FFFFFF",
			OutlineColor:     "#000000",
			OutlineWidth:     2,
			VerticalPos:      "bottom",
			HorizontalPos:    "center",
			MarginVertical:   25,
			MarginHorizontal: 20,
		},
	}
}

// Load reads configuration from file, falling back to defaults when no
// file is found
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if !cfg.ProjectMode.Valid() {
		return nil, fmt.Errorf("unknown project_type %q", cfg.ProjectMode)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type contextKey struct{}

// WithConfig stores the config in the context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext retrieves the config from the context, falling back to
// defaults
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return Default()
}

func findConfigFile() string {
	candidates := []string{
		"./videostove.yaml",
		"./videostove.yml",
		filepath.Join(os.Getenv("HOME"), ".videostove", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
