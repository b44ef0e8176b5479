package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"go-image-forensics/internal/config"
	"go-image-forensics/internal/detect"
	"go-image-forensics/internal/engine"
	"go-image-forensics/internal/imaging"
	"go-image-forensics/internal/logger"
	"go-image-forensics/internal/observer"
	"go-image-forensics/internal/report"
	"go-image-forensics/internal/storage"
	"go-image-forensics/internal/visual"
)

func main() {
	profilePath := flag.String("profile", "", "YAML file with detector parameters")
	includeClone := flag.Bool("clone", false, "enable copy-move clone detection")
	parallelism := flag.Int("parallel", 1, "maximum concurrent detectors")
	outDir := flag.String("out", "", "directory for heatmap and overlay output")
	timeout := flag.Duration("timeout", 5*time.Minute, "analysis timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	params := detect.DefaultParams()
	clone := *includeClone
	if *profilePath != "" {
		profile, err := config.LoadProfile(*profilePath)
		if err != nil {
			fatal(err)
		}
		params = profile.Params()
		clone = clone || profile.EnableClone
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	data, err := storage.NewFileFetcher(0).Fetch(ctx, imagePath)
	if err != nil {
		fatal(err)
	}
	src, err := imaging.NewSourceFromBytes(data)
	if err != nil {
		fatal(err)
	}

	opts := engine.DefaultOptions().
		WithParams(params).
		WithParallelism(*parallelism).
		WithProgress(func(detector string, completed, total int) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", completed, total, detector)
		})
	if clone {
		opts = opts.WithClone()
	}

	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))

	results, err := engine.New(opts, logger.Logger, publisher).Run(ctx, src, imagePath)
	if err != nil {
		fatal(err)
	}

	summary := report.Build(imagePath, results)
	fmt.Print(summary.Render())

	if *outDir != "" {
		if err := saveVisuals(*outDir, src, results); err != nil {
			fatal(err)
		}
	}
}

// saveVisuals writes a jet heatmap per detector map and an overlay for
// every binary mask.
func saveVisuals(dir string, src *imaging.Source, results *engine.ResultSet) error {
	red := color.RGBA{R: 255, A: 255}
	for _, entry := range results.Entries {
		if entry.Err != nil {
			continue
		}
		for name, m := range entry.Result.Maps {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", entry.Name, name))
			if err := visual.SavePNG(path, visual.Heatmap(m)); err != nil {
				return err
			}
			if name == "inconsistency_mask" || name == "clone_mask" {
				overlay, err := visual.Overlay(src.Buffer, m, 0.5, red)
				if err != nil {
					return err
				}
				overlayPath := filepath.Join(dir, fmt.Sprintf("%s_%s_overlay.png", entry.Name, name))
				if err := visual.SavePNG(overlayPath, overlay); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
