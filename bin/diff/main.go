package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"image-diff-controller/internal/compare"
	"image-diff-controller/internal/env"
	"image-diff-controller/internal/retry"
	"image-diff-controller/internal/source"
	"image-diff-controller/internal/storage"
)

type DiffOutput struct {
	DiffPath    string   `json:"diffPath"`
	DiffAmount  float64  `json:"diffAmount"`
	HasDiff     bool     `json:"hasDiff"`
	DiffSize    int      `json:"diffSize"`
	Fingerprint string   `json:"fingerprint"`
	Rectangles  []string `json:"rectangles,omitempty"`
}

func main() {
	if err := env.Load(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	var directory string
	var failOnDiff bool
	var options compare.Options
	flag.StringVar(&directory, "directory", env.OrDefault("DIRECTORY", "/tmp"), "Output directory")
	flag.StringVar(&options.Format, "format", env.OrDefault("FORMAT", "rectangle"), "Markup format (pixel or rectangle)")
	flag.IntVar(&options.ColorDistortion, "distortion", env.OrDefault("COLOR_DISTORTION", 0), "Largest per-channel difference treated as equal (0-255)")
	flag.StringVar(&options.DiffColor, "color", env.OrDefault("DIFF_COLOR", ""), "Markup color as #rrggbb or a color name")
	flag.IntVar(&options.DiffSizeTrigger, "trigger", env.OrDefault("DIFF_SIZE_TRIGGER", 0), "Number of differing pixels needed to report a difference")
	flag.IntVar(&options.MergeDistance, "merge-distance", env.OrDefault("MERGE_DISTANCE", 0), "Join rectangles closer than this many pixels")
	flag.BoolVar(&options.Raw, "raw", false, "Write the composited image without markup")
	flag.BoolVar(&failOnDiff, "fail-on-diff", false, "Exit with status 1 when the images differ")
	flag.Var((*compare.AreasFlag)(&options.Expected.IgnoredAreas), "ignore-expected", "Area of the baseline to ignore as x,y,width,height (repeatable)")
	flag.Var((*compare.AreasFlag)(&options.Actual.IgnoredAreas), "ignore-actual", "Area of the target to ignore as x,y,width,height (repeatable)")
	flag.Var((*compare.AreasFlag)(&options.Expected.CoordsToCompare), "compare-expected", "Only compare this area of the baseline (repeatable)")
	flag.Var((*compare.AreasFlag)(&options.Actual.CoordsToCompare), "compare-actual", "Only compare this area of the target (repeatable)")

	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("baseline, target not specified")
	}
	baseline := args[0]
	target := args[1]

	ctx := context.Background()
	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: directory,
	})
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	loader := &source.Loader{
		Storage: s,
		Client:  retry.NewClient(30*time.Second, retry.NewExponentialBackOff(100*time.Millisecond, 2*time.Second, 3, nil)),
	}
	pair, err := loader.LoadPair(ctx, baseline, target)
	if err != nil {
		log.Fatalf("Failed to load images: %v", err)
	}

	result, err := compare.Run(pair.Baseline, pair.Target, options)
	if err != nil {
		log.Fatalf("Failed to compare images: %v", err)
	}

	key := storage.Key("ImageComparison", "diff", "png", time.Now(), baseline, target)
	diffPath, err := s.Put(ctx, key, result.Image)
	if err != nil {
		log.Fatalf("Failed to save diff image: %v", err)
	}

	if err := json.NewEncoder(os.Stdout).Encode(DiffOutput{
		DiffPath:    diffPath,
		DiffAmount:  result.DiffAmount,
		HasDiff:     result.HasDiff,
		DiffSize:    result.DiffSize,
		Fingerprint: result.Fingerprint,
		Rectangles:  result.Rectangles,
	}); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}

	if failOnDiff && result.HasDiff {
		os.Exit(1)
	}
}
