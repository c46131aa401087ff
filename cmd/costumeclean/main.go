// Command costumeclean cleans a raw costume photo dataset: it keeps only
// single-face images, removes their background with a pretrained U²-Net,
// crops to the subject, optionally flattens transparency, and writes PNGs to
// the destination directory.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"costumeclean"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, costumeclean.ErrDeclined) {
			fmt.Fprintln(os.Stderr, "costumeclean: aborted")
		} else {
			fmt.Fprintf(os.Stderr, "costumeclean: %v\n", err)
		}
		os.Exit(1)
	}
}

// cliOptions holds the flag values that are applied to the Config after
// parsing, so DefaultConfig defaults hold unless the user passes the flag.
type cliOptions struct {
	patterns             string
	noRemoveTransparency bool
	u2netSize            string
	modelDir             string
	faceCascade          string
	verbose              bool
}

func run(args []string) error {
	cfg := costumeclean.DefaultConfig()
	var opts cliOptions

	fs := flag.NewFlagSet("costumeclean", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	fs.StringVar(&cfg.Destination, "destination", "", "Output directory (default: <source>_cleaned sibling)")
	fs.StringVar(&cfg.Destination, "d", "", "Same as --destination")
	fs.StringVar(&opts.patterns, "file-glob-patterns", "", "Comma-separated glob patterns (default: *.png,*.jpeg,*.jpg)")
	fs.BoolVar(&opts.noRemoveTransparency, "no-remove-transparency", false, "Keep the alpha channel instead of flattening")
	fs.StringVar(&cfg.BGColour, "bg-colour", cfg.BGColour, "Colour to replace transparency with")
	fs.StringVar(&opts.u2netSize, "u2net-size", "large", "Pretrained U2-Net size: large | small")
	fs.StringVar(&opts.modelDir, "u2net-model-dir", "models", "Directory holding u2net.onnx / u2netp.onnx")
	fs.StringVar(&opts.faceCascade, "face-cascade", "models/facefinder", "Path to the pigo face cascade file")
	fs.BoolVar(&cfg.SkipDuplicates, "skip-duplicates", false, "Skip perceptual near-duplicates of earlier images")
	fs.BoolVar(&cfg.AssumeYes, "yes", false, "Yes to all prompts")
	fs.BoolVar(&cfg.AssumeYes, "y", false, "Same as --yes")
	fs.BoolVar(&opts.verbose, "verbose", false, "Verbose (debug) logging")
	fs.BoolVar(&opts.verbose, "v", false, "Same as --verbose")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		printUsage(fs)
		return errors.New("need exactly one source directory argument")
	}
	cfg.Source = fs.Arg(0)
	cfg.RemoveTransparency = !opts.noRemoveTransparency
	if opts.patterns != "" {
		cfg.Patterns = splitPatterns(opts.patterns)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	detector, err := costumeclean.NewPigoDetector(opts.faceCascade)
	if err != nil {
		return err
	}
	cfg.Faces = detector

	modelPath, err := costumeclean.U2NetModelFile(opts.modelDir, costumeclean.ModelSize(opts.u2netSize))
	if err != nil {
		return err
	}
	segmenter, err := costumeclean.NewU2NetSegmenter(modelPath)
	if err != nil {
		return err
	}
	defer segmenter.Close()
	cfg.Segmenter = segmenter

	cfg.Confirm = promptConfirm

	stats, err := cfg.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Done: %d written, %d skipped (%d without a single face, %d duplicates, %d without a subject) of %d files.\n",
		stats.Written, stats.Skipped(), stats.NoFace, stats.Duplicates, stats.NoSubject, stats.Total)
	return nil
}

// promptConfirm asks a yes/no question on the terminal. Anything other than
// y/yes declines.
func promptConfirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// splitPatterns accepts comma- or whitespace-separated glob patterns.
func splitPatterns(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: costumeclean [OPTIONS] <source_dir>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Process and clean a raw dataset of costume photographs.")
	fmt.Fprintln(os.Stderr)
	fs.PrintDefaults()
}
