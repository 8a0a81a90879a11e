// Package project discovers the media inside a project folder and decides
// what role each file plays: slides, intro videos, narration, background
// music, and the overlay effect.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/pkg/util"
)

// Project is one folder's worth of source media, resolved to roles.
type Project struct {
	Name string
	Dir  string

	Images    []string
	Videos    []string
	MainAudio string
	BGMusic   string
	Overlay   string
}

var (
	imageExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true,
		".bmp": true, ".tiff": true, ".webp": true,
	}
	videoExtensions = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true,
		".mkv": true, ".webm": true, ".wmv": true, ".flv": true,
	}
	audioExtensions = map[string]bool{
		".mp3": true, ".wav": true, ".m4a": true, ".aac": true,
	}

	// Video files named like effects are overlays, not content.
	overlayKeywords = []string{"overlay", "effect", "particle", "fx"}

	// Among secondary audio files, these names win the background slot.
	bgKeywords = []string{"bg", "background", "music", "ambient"}
)

// Scan inspects dir and assigns every media file a role. Files are
// ordered naturally (img2 before img10) so slides play in the order the
// author numbered them.
func Scan(dir string, cfg *config.Config, logger zerolog.Logger) (*Project, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading project dir: %w", err)
	}

	p := &Project{
		Name: filepath.Base(dir),
		Dir:  dir,
	}

	var audioFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)
		ext := util.GetExtension(name)

		switch {
		case imageExtensions[ext]:
			p.Images = append(p.Images, path)
		case videoExtensions[ext]:
			// Overlay detection ignores use_overlay: the toggle gates
			// application, not classification, so an effect clip never
			// plays as content.
			if hasKeyword(name, overlayKeywords) {
				if p.Overlay == "" {
					p.Overlay = path
				}
			} else {
				p.Videos = append(p.Videos, path)
			}
		case audioExtensions[ext]:
			audioFiles = append(audioFiles, path)
		}
	}

	sort.Sort(natural.StringSlice(p.Images))
	sort.Sort(natural.StringSlice(p.Videos))
	sort.Sort(natural.StringSlice(audioFiles))

	// Narration is the first audio file that doesn't look like music;
	// the background slot goes to a keyword match first, then to
	// whatever audio is left over.
	for _, audio := range audioFiles {
		if !hasKeyword(filepath.Base(audio), bgKeywords) {
			p.MainAudio = audio
			break
		}
	}
	if p.MainAudio == "" && len(audioFiles) > 0 {
		p.MainAudio = audioFiles[0]
	}
	if cfg.UseBGMusic && len(audioFiles) > 1 {
		rest := make([]string, 0, len(audioFiles)-1)
		for _, audio := range audioFiles {
			if audio != p.MainAudio {
				rest = append(rest, audio)
			}
		}
		for _, audio := range rest {
			if hasKeyword(filepath.Base(audio), bgKeywords) {
				p.BGMusic = audio
				break
			}
		}
		if p.BGMusic == "" && len(rest) > 0 {
			p.BGMusic = rest[0]
		}
	}

	// Global assets fill roles the folder left empty.
	if p.Overlay == "" && util.FileExists(cfg.Assets.Overlay) {
		p.Overlay = cfg.Assets.Overlay
		logger.Debug().Str("overlay", p.Overlay).Msg("using global overlay")
	}
	if p.BGMusic == "" && cfg.UseBGMusic && util.FileExists(cfg.Assets.BGMusic) {
		p.BGMusic = cfg.Assets.BGMusic
		logger.Debug().Str("bg_music", p.BGMusic).Msg("using global background music")
	}

	return p, nil
}

// Validate reports whether the project has enough media for the given
// mode.
func (p *Project) Validate(mode config.ProjectMode) error {
	if p.MainAudio == "" {
		return fmt.Errorf("project %s: no narration audio found", p.Name)
	}

	switch mode {
	case config.ModeSlideshow:
		if len(p.Images) == 0 {
			return fmt.Errorf("project %s: slideshow mode needs at least one image", p.Name)
		}
	case config.ModeVideosOnly:
		if len(p.Videos) == 0 {
			return fmt.Errorf("project %s: videos_only mode needs at least one video", p.Name)
		}
	case config.ModeMontage:
		if len(p.Images) == 0 && len(p.Videos) == 0 {
			return fmt.Errorf("project %s: no images or videos found", p.Name)
		}
	default:
		return fmt.Errorf("unknown project mode %q", mode)
	}
	return nil
}

// Discover finds all project folders directly under root. A folder is a
// project when it contains at least one audio file.
func Discover(root string, cfg *config.Config, logger zerolog.Logger) ([]*Project, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading batch root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(natural.StringSlice(names))

	var projects []*Project
	for _, name := range names {
		p, err := Scan(filepath.Join(root, name), cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Str("dir", name).Msg("skipping unreadable folder")
			continue
		}
		if p.MainAudio == "" {
			logger.Debug().Str("dir", name).Msg("no audio, not a project")
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func hasKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
