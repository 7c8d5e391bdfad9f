// dlzw compresses 8-bit Netpbm images losslessly with a horizontal
// predictor followed by 16-bit LZW, and restores them.
//
// Usage:
//
//	dlzw [options] c|u infile outfile
//
// Either file name may be "-" for standard input or standard output.
// "c" reads a PGM, PPM or PAM image (PNG is also accepted) and writes a
// dlzw file; "u" reads a dlzw file and writes a Netpbm image, or PNG when
// outfile ends in ".png".
//
// Options:
//
//	-v, -verbose  debug logging on stderr
//	-compare      also report general-purpose compressors on the same image
//	-verify       decode the compressed stream before writing it
//	-h, -help     show usage information
//	-version      show version information
//
// Sizes, ratio and time are reported on stderr; the payload stream never
// carries diagnostics. The exit status is 1 on any error.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mrjoshuak/go-dlzw/baseline"
	"github.com/mrjoshuak/go-dlzw/dlzw"
	"github.com/mrjoshuak/go-dlzw/pnm"
	"github.com/mrjoshuak/go-dlzw/raster"
)

const version = "1.0.0"

var errUsage = errors.New("usage")

type config struct {
	mode    string
	input   string
	output  string
	verbose bool
	compare bool
	verify  bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if cfg == nil {
		fmt.Fprintf(stdout, "dlzw version %s\n", version)
		return 0
	}

	logger := slog.New(slog.DiscardHandler)
	if cfg.verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	in, err := openInput(cfg.input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Could not open input file '%s': %v\n", cfg.input, err)
		return 1
	}
	defer in.Close()

	var out []byte
	switch cfg.mode {
	case "c":
		out, err = compress(cfg, in, stderr, logger)
	case "u":
		out, err = uncompress(cfg, in, stderr, logger)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cfg.input, err)
		return 1
	}

	if err := writeOutput(cfg.output, stdout, out); err != nil {
		fmt.Fprintf(stderr, "Could not write output file '%s': %v\n", cfg.output, err)
		return 1
	}
	return 0
}

// parseArgs returns a nil config and nil error for -version.
func parseArgs(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("dlzw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg := &config{}
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging on stderr")
	fs.BoolVar(&cfg.verbose, "verbose", false, "same as -v")
	fs.BoolVar(&cfg.compare, "compare", false, "also report general-purpose compressors")
	fs.BoolVar(&cfg.verify, "verify", false, "decode the compressed stream before writing it")
	showVersion := fs.Bool("version", false, "show version information")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dlzw [options] c|u infile outfile\n\n")
		fmt.Fprintf(stderr, "Compress (c) or uncompress (u) an 8-bit image. Use - for stdin/stdout.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showVersion {
		return nil, nil
	}

	rest := fs.Args()
	if len(rest) != 3 || (rest[0] != "c" && rest[0] != "u") {
		fs.Usage()
		return nil, errUsage
	}
	cfg.mode, cfg.input, cfg.output = rest[0], rest[1], rest[2]
	return cfg, nil
}

func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(name)
}

// writeOutput creates the output file only once there is something to
// put in it, so failed runs leave no partial file behind.
func writeOutput(name string, stdout io.Writer, data []byte) error {
	if name == "-" {
		_, err := stdout.Write(data)
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// readImage accepts Netpbm or PNG input.
func readImage(r io.Reader) (*raster.Matrix, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(pngMagic)); err == nil && bytes.Equal(head, pngMagic) {
		img, _, err := image.Decode(br)
		if err != nil {
			return nil, err
		}
		return raster.FromImage(img)
	}
	return pnm.Decode(br)
}

func compress(cfg *config, in io.Reader, stderr io.Writer, logger *slog.Logger) ([]byte, error) {
	m, err := readImage(in)
	if err != nil {
		return nil, err
	}
	logger.Debug("read image", "rows", m.Rows, "cols", m.Cols, "channels", m.Channels,
		"digest", fmt.Sprintf("%016x", m.Digest()))

	opts := dlzw.DefaultOptions()
	opts.Verify = cfg.verify
	opts.Logger = logger

	var buf bytes.Buffer
	stats, err := dlzw.Encode(&buf, m, opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(stderr, "Input size:         %d bytes\n", stats.InputBytes)
	fmt.Fprintf(stderr, "Output size:        %d bytes\n", stats.OutputBytes)
	fmt.Fprintf(stderr, "Compression factor: %.2f\n", stats.Ratio())
	fmt.Fprintf(stderr, "Compression time:   %.2f seconds\n", stats.Elapsed.Seconds())
	if cfg.verify {
		fmt.Fprintf(stderr, "Verified:           %016x\n", m.Digest())
	}

	if cfg.compare {
		if err := printComparison(stderr, m, stats); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func printComparison(w io.Writer, m *raster.Matrix, stats *dlzw.Stats) error {
	results, err := baseline.Measure(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%-10s %12s %8s %10s\n", "Codec", "Size", "Factor", "Time")
	fmt.Fprintf(w, "%-10s %12d %8.2f %9.3fs\n", "dlzw", stats.OutputBytes, stats.Ratio(), stats.Elapsed.Seconds())
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%-10s %12s %8s %10s  (%v)\n", r.Name, "n/a", "n/a", "n/a", r.Err)
			continue
		}
		fmt.Fprintf(w, "%-10s %12d %8.2f %9.3fs\n", r.Name, r.Size, r.Ratio(), r.Elapsed.Seconds())
	}
	return nil
}

func uncompress(cfg *config, in io.Reader, stderr io.Writer, logger *slog.Logger) ([]byte, error) {
	opts := dlzw.DefaultOptions()
	opts.Logger = logger

	m, stats, err := dlzw.Decode(in, opts)
	if err != nil {
		if errors.Is(err, dlzw.ErrFormat) {
			return nil, fmt.Errorf("input is not in the '%s' format: %w", dlzw.Magic, err)
		}
		return nil, err
	}
	fmt.Fprintf(stderr, "Uncompression time %.2f seconds\n", stats.Elapsed.Seconds())

	var buf bytes.Buffer
	if strings.HasSuffix(strings.ToLower(cfg.output), ".png") {
		img, err := m.ToImage()
		if err != nil {
			return nil, err
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := pnm.Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
