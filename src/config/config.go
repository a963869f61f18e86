package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPathVar = "ROI_SNAPSHOT"

	DefaultCaptureKey         = "o"
	DefaultOutputDir          = "Saved ROIs"
	DefaultClusters           = 3
	DefaultColorEngine        = "kmeans"
	DefaultCaptureCooldown    = time.Second
	DefaultTitleTimeout       = 60 * time.Second
	DefaultTitlePoll          = 500 * time.Millisecond
	DefaultSingleInstancePort = 49560
)

// LoadOptions carries command-line overrides. Empty or nil fields mean "not set".
type LoadOptions struct {
	CaptureKeyOverride  string
	WindowTitleOverride string
	OutputDirOverride   string
	ClustersOverride    int
	ContinuousOverride  *bool
	VerboseOverride     *bool
}

// Config is built once at startup and passed by value afterwards.
type Config struct {
	CaptureKey         string
	Continuous         bool
	WindowTitle        string
	OutputDir          string
	Clusters           int
	ColorEngine        string
	CaptureCooldown    time.Duration
	TitleTimeout       time.Duration
	TitlePoll          time.Duration
	EnableFileLogging  bool
	CopyToClipboard    bool
	SingleInstancePort int
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use ROI_SNAPSHOT env var as a path to a config file
	// Real environment variables are never overridden by the file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := Config{
		CaptureKey:         strings.ToLower(getEnvWithDefault("CAPTURE_KEY", DefaultCaptureKey)),
		Continuous:         getEnvBool("CONTINUOUS"),
		WindowTitle:        strings.TrimSpace(os.Getenv("WINDOW_TITLE")),
		OutputDir:          getEnvWithDefault("OUTPUT_DIR", DefaultOutputDir),
		Clusters:           getEnvInt("CLUSTERS", DefaultClusters),
		ColorEngine:        strings.ToLower(getEnvWithDefault("COLOR_ENGINE", DefaultColorEngine)),
		CaptureCooldown:    getEnvMillis("CAPTURE_COOLDOWN_MS", DefaultCaptureCooldown),
		TitleTimeout:       time.Duration(getEnvInt("TITLE_TIMEOUT_SEC", int(DefaultTitleTimeout/time.Second))) * time.Second,
		TitlePoll:          getEnvMillis("TITLE_POLL_MS", DefaultTitlePoll),
		EnableFileLogging:  getEnvBool("ENABLE_FILE_LOGGING"),
		CopyToClipboard:    getEnvBool("COPY_TO_CLIPBOARD"),
		SingleInstancePort: getEnvInt("SINGLEINSTANCE_PORT", DefaultSingleInstancePort),
	}

	applyOverrides(&cfg, opts)
	return cfg, nil
}

func applyOverrides(cfg *Config, opts LoadOptions) {
	if v := strings.TrimSpace(opts.CaptureKeyOverride); v != "" {
		cfg.CaptureKey = strings.ToLower(v)
	}
	if v := strings.TrimSpace(opts.WindowTitleOverride); v != "" {
		cfg.WindowTitle = v
	}
	if v := strings.TrimSpace(opts.OutputDirOverride); v != "" {
		cfg.OutputDir = v
	}
	if opts.ClustersOverride > 0 {
		cfg.Clusters = opts.ClustersOverride
	}
	if opts.ContinuousOverride != nil {
		cfg.Continuous = *opts.ContinuousOverride
	}
	if opts.VerboseOverride != nil && *opts.VerboseOverride {
		cfg.EnableFileLogging = true
	}
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// getEnvInt falls back to defaultValue for missing, malformed or non-positive values.
func getEnvInt(key string, defaultValue int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	ms := getEnvInt(key, int(defaultValue/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}
