package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanAssignsRoles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"img2.jpg", "img10.jpg", "img1.jpg",
		"intro.mp4", "overlay_grain.mp4",
		"voice.mp3", "bg_music.mp3",
		"notes.txt",
	)

	cfg := config.Default()
	p, err := Scan(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	wantImages := []string{"img1.jpg", "img2.jpg", "img10.jpg"}
	if len(p.Images) != len(wantImages) {
		t.Fatalf("got %d images, want %d", len(p.Images), len(wantImages))
	}
	for i, want := range wantImages {
		if filepath.Base(p.Images[i]) != want {
			t.Errorf("image %d = %s, want %s", i, filepath.Base(p.Images[i]), want)
		}
	}

	if len(p.Videos) != 1 || filepath.Base(p.Videos[0]) != "intro.mp4" {
		t.Errorf("videos = %v, want only intro.mp4", p.Videos)
	}
	if filepath.Base(p.Overlay) != "overlay_grain.mp4" {
		t.Errorf("overlay = %s, want overlay_grain.mp4", p.Overlay)
	}
	if filepath.Base(p.BGMusic) != "bg_music.mp3" {
		t.Errorf("bg music = %s, want bg_music.mp3", p.BGMusic)
	}
	if filepath.Base(p.MainAudio) != "voice.mp3" {
		t.Errorf("main audio = %s, want voice.mp3", p.MainAudio)
	}
}

func TestScanOverlayKeywordExcludesFromVideos(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "clip1.mp4", "particle_fx.mp4", "voice.mp3")

	p, err := Scan(dir, config.Default(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range p.Videos {
		if filepath.Base(v) == "particle_fx.mp4" {
			t.Error("effect video leaked into content videos")
		}
	}
}

func TestScanDetectsOverlayWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "clip1.mp4", "overlay_dust.mp4", "voice.mp3")

	cfg := config.Default()
	cfg.UseOverlay = false
	p, err := Scan(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p.Overlay) != "overlay_dust.mp4" {
		t.Errorf("overlay = %s, want overlay_dust.mp4", p.Overlay)
	}
	if len(p.Videos) != 1 || filepath.Base(p.Videos[0]) != "clip1.mp4" {
		t.Errorf("videos = %v, want only clip1.mp4", p.Videos)
	}
}

func TestScanMainAudioIsFirstNatural(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "track2.mp3", "track1.mp3")

	p, err := Scan(dir, config.Default(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p.MainAudio) != "track1.mp3" {
		t.Errorf("main audio = %s, want track1.mp3", p.MainAudio)
	}
	// No bg keyword match falls back to the second file.
	if filepath.Base(p.BGMusic) != "track2.mp3" {
		t.Errorf("bg music = %s, want track2.mp3", p.BGMusic)
	}
}

func TestScanBGMusicDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "voice.mp3", "bg.mp3")

	cfg := config.Default()
	cfg.UseBGMusic = false
	p, err := Scan(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if p.BGMusic != "" {
		t.Errorf("bg music = %s, want none", p.BGMusic)
	}
}

func TestScanGlobalAssets(t *testing.T) {
	assetDir := t.TempDir()
	writeFiles(t, assetDir, "global_overlay.mp4", "ambient.mp3")

	dir := t.TempDir()
	writeFiles(t, dir, "img1.jpg", "voice.mp3")

	cfg := config.Default()
	cfg.Assets.Overlay = filepath.Join(assetDir, "global_overlay.mp4")
	cfg.Assets.BGMusic = filepath.Join(assetDir, "ambient.mp3")

	p, err := Scan(dir, cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if p.Overlay != cfg.Assets.Overlay {
		t.Errorf("overlay = %s, want global asset", p.Overlay)
	}
	if p.BGMusic != cfg.Assets.BGMusic {
		t.Errorf("bg music = %s, want global asset", p.BGMusic)
	}
}

func TestValidate(t *testing.T) {
	p := &Project{Name: "test", MainAudio: "voice.mp3"}

	if err := p.Validate(config.ModeSlideshow); err == nil {
		t.Error("slideshow with no images should fail validation")
	}
	if err := p.Validate(config.ModeVideosOnly); err == nil {
		t.Error("videos_only with no videos should fail validation")
	}
	if err := p.Validate(config.ModeMontage); err == nil {
		t.Error("montage with no media should fail validation")
	}

	p.Images = []string{"a.jpg"}
	if err := p.Validate(config.ModeMontage); err != nil {
		t.Errorf("montage with images failed: %v", err)
	}

	noAudio := &Project{Name: "mute", Images: []string{"a.jpg"}}
	if err := noAudio.Validate(config.ModeSlideshow); err == nil {
		t.Error("project without narration should fail validation")
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()

	proj1 := filepath.Join(root, "project2")
	proj2 := filepath.Join(root, "project10")
	empty := filepath.Join(root, "assets")
	for _, d := range []string{proj1, proj2, empty} {
		if err := os.Mkdir(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	writeFiles(t, proj1, "voice.mp3", "img.jpg")
	writeFiles(t, proj2, "voice.mp3", "img.jpg")
	writeFiles(t, empty, "overlay.mp4")

	projects, err := Discover(root, config.Default(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}
	if projects[0].Name != "project2" || projects[1].Name != "project10" {
		t.Errorf("order = %s, %s; want project2, project10", projects[0].Name, projects[1].Name)
	}
}
