// Package costumeclean implements a batch cleaning pipeline for raw costume
// photo datasets: images are filtered to those containing exactly one face,
// the background is removed using a pretrained U²-Net segmentation map, the
// result is cropped to the subject's bounding box, optionally flattened onto
// a solid colour, and written to a destination directory as PNG.
//
// The face-detection and segmentation models are injected as interfaces so
// the pipeline can be exercised with deterministic doubles in tests.
package costumeclean

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ModelSize selects the pretrained U²-Net variant.
type ModelSize string

const (
	ModelLarge ModelSize = "large" // full u2net
	ModelSmall ModelSize = "small" // u2netp
)

// FaceDetector locates faces in a decoded image. The pipeline only consults
// the number of detections: exactly one admits the image.
type FaceDetector interface {
	DetectFaces(img image.Image) ([]image.Rectangle, error)
}

// Segmenter computes a foreground/background map for a decoded image.
type Segmenter interface {
	Segment(img image.Image) (*SegmentationMap, error)
}

// ConfirmFunc asks the user a yes/no question before a destructive action.
// A nil ConfirmFunc means "yes to all".
type ConfirmFunc func(prompt string) bool

// Config holds all pipeline settings and injected collaborators.
type Config struct {
	// Source is the directory containing the raw dataset. Required; must be
	// an existing, readable directory.
	Source string

	// Destination is the output directory. Default: a "<source>_cleaned"
	// sibling of the source directory.
	Destination string

	// Patterns are the glob patterns (matched against file basenames,
	// recursively) used to find candidate files.
	// Default: "*.png", "*.jpeg", "*.jpg".
	Patterns []string

	// RemoveTransparency flattens cropped images onto BGColour.
	// Default (via DefaultConfig): true.
	RemoveTransparency bool

	// BGColour is the flattening fill colour: a named colour ("white",
	// "papayawhip") or "#rgb"/"#rrggbb" hex. Default: "white".
	BGColour string

	// SkipDuplicates enables the perceptual near-duplicate filter: after the
	// face check, an image perceptually identical to an earlier one in the
	// same run is skipped.
	SkipDuplicates bool

	// AssumeYes suppresses the overwrite confirmation (same as a nil Confirm).
	AssumeYes bool

	// RemoveWait bounds the wait for destination deletion to become visible.
	// Default: DefaultRemoveWait.
	RemoveWait time.Duration

	Faces     FaceDetector // required
	Segmenter Segmenter    // required

	// Confirm gates the destructive destination clear. Nil = yes to all.
	Confirm ConfirmFunc

	// Progress is the writer for the progress bar (default: os.Stderr).
	Progress io.Writer
}

// DefaultConfig returns a Config with the documented defaults applied.
// Collaborators (Faces, Segmenter) must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		Patterns:           []string{"*.png", "*.jpeg", "*.jpg"},
		RemoveTransparency: true,
		BGColour:           "white",
		RemoveWait:         DefaultRemoveWait,
	}
}

// defaults fills zero-value fields so a partially constructed Config behaves
// like DefaultConfig (bools excepted: their zero value is meaningful).
func (c *Config) defaults() {
	if len(c.Patterns) == 0 {
		c.Patterns = []string{"*.png", "*.jpeg", "*.jpg"}
	}
	if c.BGColour == "" {
		c.BGColour = "white"
	}
	if c.RemoveWait <= 0 {
		c.RemoveWait = DefaultRemoveWait
	}
	if c.Progress == nil {
		c.Progress = os.Stderr
	}
	if c.Destination == "" && c.Source != "" {
		parent := filepath.Dir(filepath.Clean(c.Source))
		c.Destination = filepath.Join(parent, filepath.Base(filepath.Clean(c.Source))+"_cleaned")
	}
}

// Validate checks the configuration eagerly, before any processing or side
// effect. It mirrors the CLI contract: an invalid source directory, pattern,
// or colour is a configuration error, not a runtime one.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source directory is required")
	}
	info, err := os.Stat(c.Source)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q is not a valid directory", c.Source)
	}
	f, err := os.Open(c.Source)
	if err != nil {
		return fmt.Errorf("%q is not a readable directory", c.Source)
	}
	f.Close()

	for _, p := range c.Patterns {
		if _, err := filepath.Match(p, "x"); err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
	}
	if _, err := ParseColour(c.BGColour); err != nil {
		return err
	}
	if c.Faces == nil {
		return errors.New("no face detector configured")
	}
	if c.Segmenter == nil {
		return errors.New("no segmenter configured")
	}
	return nil
}
