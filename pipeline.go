package costumeclean

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// RunStats aggregates per-file outcomes of one batch run.
type RunStats struct {
	Total      int // candidate files enumerated
	Written    int // artifacts persisted
	NoFace     int // skipped: face count != 1
	Duplicates int // skipped: perceptual near-duplicate
	NoSubject  int // skipped: segmentation found no foreground
}

// Skipped is the number of files that produced no artifact.
func (s RunStats) Skipped() int {
	return s.NoFace + s.Duplicates + s.NoSubject
}

// fileOutcome is the terminal state of one file's pass through the pipeline.
type fileOutcome int

const (
	outcomeWritten fileOutcome = iota
	outcomeNoFace
	outcomeDuplicate
	outcomeNoSubject
)

// Run executes the full batch: enumerate candidates, prepare the destination
// (with the confirm-before-overwrite gate), then process files strictly one
// at a time. Data-quality mismatches (face count, duplicates, empty
// foreground) skip the file silently; any other failure aborts the whole
// batch, leaving already-written artifacts in place.
func (c *Config) Run(ctx context.Context) (RunStats, error) {
	c.defaults()
	var stats RunStats
	if err := c.Validate(); err != nil {
		return stats, err
	}
	bg, err := ParseColour(c.BGColour)
	if err != nil {
		return stats, err
	}

	files, err := FindFiles(c.Source, c.Patterns)
	if err != nil {
		return stats, fmt.Errorf("enumerate source files: %w", err)
	}
	stats.Total = len(files)

	confirm := c.Confirm
	if c.AssumeYes {
		confirm = nil
	}
	action, err := PrepareDestination(c.Destination, confirm, c.RemoveWait)
	if err != nil {
		return stats, err
	}
	slog.Debug("destination prepared", "path", c.Destination, "action", action)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(c.Progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionClearOnFinish(),
	)

	var seen *dedupFilter
	if c.SkipDuplicates {
		seen = &dedupFilter{}
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		bar.Describe("Processing " + filepath.Base(file))

		outcome, err := c.processFile(file, bg, seen)
		if err != nil {
			return stats, err
		}
		switch outcome {
		case outcomeWritten:
			stats.Written++
		case outcomeNoFace:
			stats.NoFace++
		case outcomeDuplicate:
			stats.Duplicates++
		case outcomeNoSubject:
			stats.NoSubject++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return stats, nil
}

// processFile runs one file through detect -> segment -> crop -> flatten ->
// write. Returns a skip outcome for data-quality rejections and an error
// only for genuine processing failures.
func (c *Config) processFile(file string, bg color.Color, seen *dedupFilter) (fileOutcome, error) {
	img, err := DecodeImage(file)
	if err != nil {
		return 0, err
	}

	faces, err := c.Faces.DetectFaces(img)
	if err != nil {
		return 0, fmt.Errorf("detect faces in %s: %w", file, err)
	}
	if len(faces) != 1 {
		slog.Debug("skipping: face count is not 1", "file", file, "faces", len(faces))
		return outcomeNoFace, nil
	}

	if seen != nil && seen.isDuplicate(img) {
		slog.Debug("skipping: near-duplicate of an earlier image", "file", file)
		return outcomeDuplicate, nil
	}

	segMap, err := c.Segmenter.Segment(img)
	if err != nil {
		return 0, fmt.Errorf("segment %s: %w", file, err)
	}
	box, ok := segMap.BoundingBox()
	if !ok {
		slog.Warn("skipping: segmentation found no foreground", "file", file)
		return outcomeNoSubject, nil
	}

	cut := segMap.RemoveBackground(img)
	cropped := Crop(cut, box)

	var out image.Image = cropped
	if c.RemoveTransparency {
		out = Flatten(cropped, bg)
	}

	dest := filepath.Join(c.Destination, stem(file)+".png")
	if err := writePNG(dest, out); err != nil {
		return 0, fmt.Errorf("write artifact for %s: %w", file, err)
	}
	return outcomeWritten, nil
}

// stem returns the file's base name without its extension. Source directory
// structure is flattened, so two files with the same stem in different
// subdirectories overwrite one another.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
