package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/videostove/videostove/internal/captions"
	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/logging"
	"github.com/videostove/videostove/internal/pipeline"
	"github.com/videostove/videostove/internal/project"
)

var (
	cfgFile string
	verbose bool

	outputPath string
	modeFlag   string
	noCaptions bool
	outputDir  string
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "videostove",
	Short: "videostove - narrated slideshow and montage builder",
	Long:  "Turns a folder of images, videos and narration into a finished video with motion, overlays, background music and captions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env can carry machine-local paths for global assets
		_ = godotenv.Load()

		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if modeFlag != "" {
			mode := config.ProjectMode(modeFlag)
			if !mode.Valid() {
				return fmt.Errorf("unknown mode %q", modeFlag)
			}
			cfg.ProjectMode = mode
		}
		if noCaptions {
			cfg.Captions.Enabled = false
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./videostove.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "override project mode (slideshow, montage, videos_only)")
	rootCmd.PersistentFlags().BoolVar(&noCaptions, "no-captions", false, "disable captioning")

	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: <project>.mp4)")
	batchCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default: batch root)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [project dir]",
	Short: "Render a single project folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		proj, err := project.Scan(args[0], cfg, log.Logger)
		if err != nil {
			return err
		}

		output := outputPath
		if output == "" {
			output = proj.Name + ".mp4"
		}

		start := time.Now()
		if err := pipe.Run(cmd.Context(), proj, output); err != nil {
			return err
		}

		log.Info().
			Str("output", output).
			Dur("elapsed", time.Since(start)).
			Msg("project rendered")
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [root dir]",
	Short: "Render every project folder under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		projects, err := project.Discover(args[0], cfg, log.Logger)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			return fmt.Errorf("no project folders found under %s", args[0])
		}

		outDir := outputDir
		if outDir == "" {
			outDir = args[0]
		}

		var failed int
		for i, proj := range projects {
			output := filepath.Join(outDir, proj.Name+".mp4")
			log.Info().
				Int("current", i+1).
				Int("total", len(projects)).
				Str("project", proj.Name).
				Msg("rendering")

			if err := pipe.Run(cmd.Context(), proj, output); err != nil {
				log.Error().Err(err).Str("project", proj.Name).Msg("render failed")
				failed++
			}
		}

		log.Info().
			Int("succeeded", len(projects)-failed).
			Int("failed", failed).
			Msg("batch complete")
		if failed > 0 {
			return fmt.Errorf("%d of %d projects failed", failed, len(projects))
		}
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Show media metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, err := ffmpeg.New(log.Logger)
		if err != nil {
			return err
		}

		info, err := exec.ProbeMedia(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		log.Info().
			Str("file", info.FilePath).
			Float64("duration", info.Duration).
			Int("width", info.Width).
			Int("height", info.Height).
			Float64("fps", info.FPS).
			Str("video_codec", info.VideoCodec).
			Bool("has_audio", info.HasAudio).
			Str("audio_codec", info.AudioCodec).
			Msg("probe result")

		hw := exec.HardwareEncoders(cmd.Context())
		names := make([]string, len(hw))
		for i, enc := range hw {
			names[i] = string(enc)
		}
		log.Info().Strs("hardware_encoders", names).Msg("available hardware encoders")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to videostove.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "videostove.yaml"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

// buildPipeline wires the executor, pipeline and optional captioner.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	exec, err := ffmpeg.New(log.Logger)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	pipe := pipeline.New(exec, cfg, log.Logger, seed)

	// Captions are best effort: a missing whisper binary downgrades the
	// run to uncaptioned output instead of failing it.
	if cfg.Captions.Enabled {
		transcriber, err := captions.NewTranscriber(&cfg.Captions, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("captions enabled but no transcriber available, rendering without captions")
		} else {
			pipe.WithCaptioner(captions.New(exec, transcriber, cfg, log.Logger, seed))
		}
	}

	return pipe, nil
}
