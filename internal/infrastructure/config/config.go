package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "https://gitlab.com"
	DefaultTimeout      = 10 * time.Second
	DefaultInterval     = 60 * time.Second
	DefaultMaxPipelines = 5
)

type Config struct {
	GitLab struct {
		BaseURL string        `yaml:"base_url"`
		Token   string        `yaml:"token"`
		Timeout time.Duration `yaml:"timeout"`
		Retries int           `yaml:"retries,omitempty"`
	} `yaml:"gitlab"`

	Refresh struct {
		Interval     time.Duration `yaml:"interval"`
		MaxPipelines int           `yaml:"max_pipelines"`
		PauseFile    string        `yaml:"pause_file"`
	} `yaml:"refresh"`

	Notify struct {
		Enabled bool     `yaml:"enabled"`
		Muted   []string `yaml:"muted,omitempty"`
	} `yaml:"notify"`

	Snapshot struct {
		Path string `yaml:"path"`
	} `yaml:"snapshot"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// legacyConfig is the config.json of the browser dashboard: just a server
// and a token. Comments and trailing commas are accepted.
type legacyConfig struct {
	Server string `json:"server"`
	Token  string `json:"token"`
}

func Default() Config {
	var c Config
	c.GitLab.BaseURL = DefaultBaseURL
	c.GitLab.Timeout = DefaultTimeout
	c.Refresh.Interval = DefaultInterval
	c.Refresh.MaxPipelines = DefaultMaxPipelines
	c.Refresh.PauseFile = expandHome("~/.cache/ci_dashboard_paused")
	c.Snapshot.Path = expandHome("~/.cache/ci_dashboard.json")
	c.Log.Level = "info"
	c.Log.File = expandHome("~/.cache/ci-dashboard.log")
	return c
}

// Load reads path (YAML, or JSON for .json/.jsonc files) over the defaults
// and applies environment overrides. A missing file is not an error: the
// configuration can come from the environment alone.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return c, err
		case isJSON(path):
			var lc legacyConfig
			if err := json.Unmarshal(jsonc.ToJSON(b), &lc); err != nil {
				return c, fmt.Errorf("parsing %s: %w", path, err)
			}
			if lc.Server != "" {
				c.GitLab.BaseURL = lc.Server
			}
			c.GitLab.Token = lc.Token
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("GITLAB_BASE_URL"); v != "" {
		c.GitLab.BaseURL = v
	}

	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		c.GitLab.Token = v
	}

	if v := os.Getenv("GITLAB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.GitLab.Timeout = d
		}
	}

	if v := os.Getenv("GITLAB_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GitLab.Retries = n
		}
	}

	if v := os.Getenv("INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Refresh.Interval = d
		}
	}

	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		c.Snapshot.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}

	c.Snapshot.Path = expandHome(c.Snapshot.Path)
	c.Refresh.PauseFile = expandHome(c.Refresh.PauseFile)
	c.Log.File = expandHome(c.Log.File)

	if c.GitLab.BaseURL == "" {
		c.GitLab.BaseURL = DefaultBaseURL
	}

	if c.Refresh.Interval <= 0 {
		c.Refresh.Interval = DefaultInterval
	}

	if c.Refresh.MaxPipelines <= 0 {
		c.Refresh.MaxPipelines = DefaultMaxPipelines
	}

	if c.GitLab.Timeout <= 0 {
		c.GitLab.Timeout = DefaultTimeout
	}

	if c.GitLab.Retries < 0 {
		c.GitLab.Retries = 0
	}

	if c.GitLab.Token == "" {
		return c, errors.New("GITLAB_TOKEN is required")
	}

	return c, nil
}

// Save writes c as YAML, atomically and under an exclusive lock.
func Save(path string, c Config) error {
	if path == "" {
		return errors.New("empty config path")
	}

	if isJSON(path) {
		return fmt.Errorf("%s: only YAML configs can be written", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lockFile := path + ".lock"
	lf, err := os.OpenFile(lockFile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = lf.Close() }()

	if runtime.GOOS != "windows" {
		if err := syscall.Flock(int(lf.Fd()), syscall.LOCK_EX); err != nil {
			return err
		}
		defer func() { _ = syscall.Flock(int(lf.Fd()), syscall.LOCK_UN) }()
	}

	b, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	if _, err := f.Write(b); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func isJSON(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	}
	return false
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}
