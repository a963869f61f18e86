package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"roi-snapshot/src/config"
	"roi-snapshot/src/desktop"
	"roi-snapshot/src/eventloop"
	"roi-snapshot/src/gui"
	"roi-snapshot/src/hotkey"
	"roi-snapshot/src/logutil"
	"roi-snapshot/src/overlay"
	"roi-snapshot/src/palette"
	"roi-snapshot/src/runtimeinit"
	"roi-snapshot/src/session"
	"roi-snapshot/src/singleinstance"
	"roi-snapshot/src/snapshot"
)

var errAlreadyRunning = errors.New("another instance is already running")

type mainOptions struct {
	continuous bool
	title      string
	key        string
	output     string
	clusters   int
	verbose    bool
	trigger    bool
}

func main() {
	// fyne's driver needs the main OS thread.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"roi-snapshot"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roi-snapshot",
		Short:         "Capture a window, pick a region and save its geometry and dominant colors",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), loadOptionsFrom(cmd, *opts), *opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.continuous, "continuous", "c", false, "Keep capturing until Esc is pressed")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Capture the first window whose title contains this text (case-insensitive)")
	cmd.Flags().StringVar(&opts.key, "key", "", "Capture hotkey, e.g. o or ctrl+shift+o")
	cmd.Flags().StringVar(&opts.output, "output", "", "Directory that receives snapshot folders")
	cmd.Flags().IntVar(&opts.clusters, "clusters", 0, "Number of dominant colors to report")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Write a debug log file")
	cmd.Flags().BoolVar(&opts.trigger, "trigger", false, "Ask the running instance to capture once and print the snapshot folder")

	return cmd
}

// loadOptionsFrom turns the flags the user actually set into config overrides.
func loadOptionsFrom(cmd *cobra.Command, opts mainOptions) config.LoadOptions {
	lo := config.LoadOptions{
		CaptureKeyOverride:  opts.key,
		WindowTitleOverride: opts.title,
		OutputDirOverride:   opts.output,
		ClustersOverride:    opts.clusters,
	}
	if cmd.Flags().Changed("continuous") {
		c := opts.continuous
		lo.ContinuousOverride = &c
	}
	if cmd.Flags().Changed("verbose") {
		v := opts.verbose
		lo.VerboseOverride = &v
	}
	return lo
}

func runWithOptions(parent context.Context, lo config.LoadOptions, opts mainOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enableDPIAwareness()

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   lo,
		SetupLogging:  logutil.Setup,
		InitClipboard: !opts.trigger,
	})
	if err != nil {
		return err
	}
	logMonitorConfiguration()

	client := singleinstance.NewClient(cfg.SingleInstancePort)
	if opts.trigger {
		return triggerResident(ctx, client, os.Stdout)
	}

	srv := singleinstance.NewServer(cfg.SingleInstancePort)
	if err := srv.Start(ctx); err != nil {
		if client.Alive(ctx) {
			fmt.Printf("roi-snapshot is already running on port %d; use --trigger to request a capture\n", cfg.SingleInstancePort)
			return errAlreadyRunning
		}
		return fmt.Errorf("claiming port %d: %w", cfg.SingleInstancePort, err)
	}
	defer srv.Close()

	listener, err := hotkey.NewListener(cfg.CaptureKey, eventloop.ExitKey)
	if err != nil {
		return fmt.Errorf("invalid capture key %q: %w", cfg.CaptureKey, err)
	}

	targets := []session.ResultTarget{session.StdoutTarget{}}
	if cfg.CopyToClipboard {
		targets = append(targets, session.ClipboardTarget{})
	}

	log.Printf("roi-snapshot starting on port %d", cfg.SingleInstancePort)
	printBanner(os.Stdout, cfg)

	var loopErr error
	gui.Run(func(a fyne.App) {
		dsk := desktop.New()
		defer dsk.Close()

		writer := snapshot.NewWriter(cfg.OutputDir)
		summarizer := palette.New(palette.ParseEngine(cfg.ColorEngine), time.Now().UnixNano())
		picker := overlay.NewPicker(a)

		capture := func(ctx context.Context) (session.Result, error) {
			return session.Execute(ctx, session.Options{
				Desktop:      dsk,
				Selector:     picker,
				Writer:       writer,
				Summarizer:   summarizer,
				Clusters:     cfg.Clusters,
				Title:        cfg.WindowTitle,
				TitleTimeout: cfg.TitleTimeout,
				TitlePoll:    cfg.TitlePoll,
				Targets:      targets,
			})
		}

		loop := eventloop.New(cfg, capture)
		listener.Start(ctx)
		loopErr = loop.Run(ctx, listener.Events(), srv.Requests())
		stop()
	})

	switch {
	case loopErr == nil:
		if cfg.Continuous {
			fmt.Println("Exiting (continuous mode).")
		}
		return nil
	case errors.Is(loopErr, context.Canceled):
		log.Printf("Interrupted")
		return nil
	default:
		log.Printf("event loop stopped: %v", loopErr)
		return loopErr
	}
}

func printBanner(w io.Writer, cfg config.Config) {
	target := "the active window"
	if cfg.WindowTitle != "" {
		target = fmt.Sprintf("the window titled %q", cfg.WindowTitle)
	}
	fmt.Fprintf(w, "Press '%s' to capture %s and select an ROI.\n", cfg.CaptureKey, target)
	if cfg.Continuous {
		fmt.Fprintf(w, "Press '%s' to exit (continuous mode).\n", eventloop.ExitKey)
	} else {
		fmt.Fprintln(w, "Exiting after one ROI capture (single-run mode).")
	}
}

// triggerResident delegates one capture to the running instance.
func triggerResident(ctx context.Context, client singleinstance.Client, out io.Writer) error {
	dir, err := client.Trigger(ctx)
	if errors.Is(err, singleinstance.ErrNoResident) {
		return fmt.Errorf("no running roi-snapshot instance to trigger")
	}
	if err != nil {
		return fmt.Errorf("resident capture failed: %w", err)
	}
	fmt.Fprintln(out, dir)
	return nil
}

// normalizeLegacyArgs maps single-dash long flags (-continuous, -title=x) to
// their GNU form so cobra accepts both.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	long := []string{"continuous", "title", "key", "output", "clusters", "verbose", "trigger"}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		if arg == "--" {
			break
		}
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
