package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"roi-snapshot/src/config"
	"roi-snapshot/src/geometry"
	"roi-snapshot/src/palette"
	"roi-snapshot/src/report"
	"roi-snapshot/src/runtimeinit"
	"roi-snapshot/src/screenshot"
)

const (
	maxFileSizeMB = 50
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath   string
	rect       string
	left       int
	top        int
	title      string
	clusters   int
	engine     string
	seed       int64
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdin, os.Stdout)
}

func runWithArgs(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"roi-analyze"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdin, stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roi-analyze",
		Short:         "Summarize an ROI of a saved window screenshot without a display",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, stdin, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to a window screenshot (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.rect, "rect", "", "Window-relative ROI as x,y,w,h (default: whole image)")
	cmd.Flags().IntVar(&opts.left, "left", 0, "Screen X of the window's top-left corner")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Screen Y of the window's top-left corner")
	cmd.Flags().StringVar(&opts.title, "title", "", "Window title to print in the report (default: file name)")
	cmd.Flags().IntVar(&opts.clusters, "clusters", 0, "Number of dominant colors to report")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "Color engine: kmeans or prominent")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed for k-means initialization (0 = random)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting ROI analyzer\n")
	}

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{ClustersOverride: opts.clusters},
	})
	if err != nil {
		return err
	}
	engine := cfg.ColorEngine
	if opts.engine != "" {
		engine = opts.engine
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded: clusters=%d engine=%s\n", cfg.Clusters, engine)
	}

	img, err := readImage(opts.filePath, stdin, opts.verbose)
	if err != nil {
		return err
	}

	title := opts.title
	if title == "" {
		title = opts.filePath
	}

	result, err := analyze(img, analyzeInput{
		Rect:     opts.rect,
		Origin:   geometry.Point{X: float64(opts.left), Y: float64(opts.top)},
		Title:    title,
		Clusters: cfg.Clusters,
		Engine:   palette.ParseEngine(engine),
		Seed:     opts.seed,
	})
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Analysis completed in %v, %d clusters\n", result.elapsed, len(result.summary.Clusters))
	}

	return outputResult(stdout, result, opts.filePath, opts.jsonOutput)
}

func readImage(filePath string, stdin io.Reader, verbose bool) (image.Image, error) {
	var data []byte
	var err error

	if filePath == "-" {
		if verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from stdin\n")
		}
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Reading image from file: %s\n", filePath)
		}
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("input is not a decodable image: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Decoded %dx%d image\n", img.Bounds().Dx(), img.Bounds().Dy())
	}
	return img, nil
}

type analyzeInput struct {
	Rect     string
	Origin   geometry.Point
	Title    string
	Clusters int
	Engine   palette.Engine
	Seed     int64
}

type analyzeResult struct {
	summary report.Summary
	elapsed time.Duration
}

// analyze treats img as a window capture and summarizes the ROI inside it.
func analyze(img image.Image, in analyzeInput) (analyzeResult, error) {
	startTime := time.Now()
	b := img.Bounds()

	roi := image.Rect(0, 0, b.Dx(), b.Dy())
	if in.Rect != "" {
		r, err := parseRect(in.Rect)
		if err != nil {
			return analyzeResult{}, err
		}
		roi = r.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
		if roi.Empty() {
			return analyzeResult{}, fmt.Errorf("rect %s lies outside the %dx%d image", in.Rect, b.Dx(), b.Dy())
		}
	}

	views, err := geometry.Convert(geometry.FromImageRect(roi), in.Origin, b.Dx(), b.Dy())
	if err != nil {
		return analyzeResult{}, fmt.Errorf("converting ROI: %w", err)
	}

	crop := screenshot.Crop(img, roi.Add(b.Min))
	k := in.Clusters
	if k <= 0 {
		k = palette.DefaultK
	}
	clusters := palette.New(in.Engine, in.Seed).Summarize(crop, k)

	return analyzeResult{
		summary: report.Summary{
			WindowTitle:  in.Title,
			WindowWidth:  b.Dx(),
			WindowHeight: b.Dy(),
			Views:        views,
			K:            k,
			Clusters:     clusters,
		},
		elapsed: time.Since(startTime),
	}, nil
}

// parseRect reads "x,y,w,h" with a positive size.
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rect %q: expected x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("rect %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

type ColorResult struct {
	Hex     string  `json:"hex"`
	RGB     [3]int  `json:"rgb"`
	HSV     [3]int  `json:"hsv"`
	Percent float64 `json:"percent"`
}

type ROIResult struct {
	Source     string        `json:"source"`
	Timestamp  string        `json:"timestamp"`
	Duration   float64       `json:"duration_seconds"`
	Relative   [4]float64    `json:"relative"`
	Absolute   [4]float64    `json:"absolute"`
	Normalized [4]float64    `json:"normalized"`
	Colors     []ColorResult `json:"colors"`
}

func rectArray(r geometry.Rect) [4]float64 { return [4]float64{r.X, r.Y, r.W, r.H} }

func outputResult(w io.Writer, res analyzeResult, sourcePath string, jsonOutput bool) error {
	if !jsonOutput {
		_, err := io.WriteString(w, report.Format(res.summary))
		return err
	}

	views := res.summary.Views
	out := ROIResult{
		Source:     sourcePath,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Duration:   res.elapsed.Seconds(),
		Relative:   rectArray(views.Relative.Rect),
		Absolute:   rectArray(views.Absolute.Rect),
		Normalized: rectArray(views.Normalized.Rect),
		Colors:     make([]ColorResult, 0, len(res.summary.Clusters)),
	}
	for _, c := range res.summary.Clusters {
		out.Colors = append(out.Colors, ColorResult{
			Hex:     c.Hex,
			RGB:     [3]int{int(c.Color.R), int(c.Color.G), int(c.Color.B)},
			HSV:     [3]int{c.HSV.H, c.HSV.S, c.HSV.V},
			Percent: c.Percent,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	long := []string{"file", "rect", "left", "top", "title", "clusters", "engine", "seed", "json", "verbose"}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
