package runtimeinit

import (
	"fmt"
	"log"

	"roi-snapshot/src/clipboard"
	"roi-snapshot/src/config"
	"roi-snapshot/src/logutil"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// InitClipboard claims the clipboard when the config asks for copies.
	InitClipboard bool
}

// Bootstrap loads configuration and brings up the process-wide services.
// A clipboard that cannot be initialized disables COPY_TO_CLIPBOARD instead
// of failing startup.
func Bootstrap(opts Options) (config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	log.Printf("Config: key=%s continuous=%v title=%q output=%q clusters=%d engine=%s cooldown=%v",
		cfg.CaptureKey, cfg.Continuous, logutil.SanitizeForLog(cfg.WindowTitle), cfg.OutputDir,
		cfg.Clusters, cfg.ColorEngine, cfg.CaptureCooldown)

	if opts.InitClipboard && cfg.CopyToClipboard {
		if err := clipboardInit(); err != nil {
			log.Printf("Clipboard disabled: %v", err)
			cfg.CopyToClipboard = false
		}
	}

	return cfg, nil
}

var clipboardInit = clipboard.Init
