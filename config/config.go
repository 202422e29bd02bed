package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL = "MICROSEG_BASE_URL"
	EnvDataDir = "MICROSEG_DATA_DIR"
	EnvDebug   = "MICROSEG_DEBUG"
)

// Config holds runtime configuration for the capture client, the
// segmentation backend and the window. Fields may be loaded from a JSON file,
// then overridden by environment variables and command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Capture server
	BaseURL            string `json:"base_url"`
	DataDir            string `json:"data_dir"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds"`

	// Loaded images are shrunk to fit this bound before display and segmentation.
	MaxDisplayWidth  int `json:"max_display_width"`
	MaxDisplayHeight int `json:"max_display_height"`

	// SAM2 backend
	EncoderModelPath   string `json:"encoder_model_path"`
	DecoderModelPath   string `json:"decoder_model_path"`
	OnnxRuntimeLibPath string `json:"onnx_runtime_lib_path"`
	UseCuda            bool   `json:"use_cuda"`

	// Window
	WindowWidth  int  `json:"window_width"`
	WindowHeight int  `json:"window_height"`
	DarkMode     bool `json:"dark_mode"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		BaseURL:            "http://microscope.local:5000",
		DataDir:            "data",
		HTTPTimeoutSeconds: 60,
		MaxDisplayWidth:    1600,
		MaxDisplayHeight:   900,
		WindowWidth:        1180,
		WindowHeight:       760,
		DarkMode:           true,
	}
}

// HTTPTimeout returns the request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Validate clamps/normalizes values to safe ranges. It fails only for a base
// URL that is not http(s).
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = "http://microscope.local:5000"
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return errors.Errorf("base_url %q must start with http:// or https://", c.BaseURL)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "data"
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = 60
	}
	if c.MaxDisplayWidth <= 0 {
		c.MaxDisplayWidth = 1600
	}
	if c.MaxDisplayHeight <= 0 {
		c.MaxDisplayHeight = 900
	}
	if c.WindowWidth < 400 {
		c.WindowWidth = 1180
	}
	if c.WindowHeight < 300 {
		c.WindowHeight = 760
	}
	return nil
}

// ApplyEnv loads envFile (when present) into the process environment and
// overrides fields from the MICROSEG_* variables. Variables already set in
// the environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return errors.Wrapf(err, "load %s", envFile)
		}
	}
	if v, ok := os.LookupEnv(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvDebug)
		}
		c.Debug = b
	}
	return c.Validate()
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), errors.Wrapf(err, "decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
