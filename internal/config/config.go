package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yjkogan/stuff-tracker/internal/glicko"
)

type Config struct {
	// ListenAddr is the host:port the HTTP server binds to.
	ListenAddr string

	// DatabasePath is the path to the sqlite database file.
	DatabasePath string

	// UploadDir is where uploaded images are written and served from.
	UploadDir string

	// TokenKey signs the auth tokens handed out on login, it must be at
	// least 32 chars long.
	TokenKey string

	// Rating system tuning, zero values use the defaults.
	Tau            float64
	ScoreSteepness float64
}

func Default() Config {
	return Config{
		ListenAddr:   "0.0.0.0:3000",
		DatabasePath: "./stuff-tracker.db",
		UploadDir:    "./uploads",
	}
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

// GlickoParams returns the rating system parameters with the tunables of
// this Config applied.
func (c *Config) GlickoParams() (glicko.Params, error) {
	p := glicko.DefaultParams()
	if c.Tau != 0 {
		p.Tau = c.Tau
	}
	if c.ScoreSteepness != 0 {
		p.ScoreSteepness = c.ScoreSteepness
	}

	if err := p.Validate(); err != nil {
		return glicko.Params{}, err
	}

	return p, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"STUFF_TRACKER_LISTEN", &c.ListenAddr},
		{"STUFF_TRACKER_DB", &c.DatabasePath},
		{"STUFF_TRACKER_UPLOADS", &c.UploadDir},
		{"STUFF_TRACKER_TOKEN_KEY", &c.TokenKey},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	floats := []struct {
		src string
		dst *float64
	}{
		{"STUFF_TRACKER_TAU", &c.Tau},
		{"STUFF_TRACKER_SCORE_STEEPNESS", &c.ScoreSteepness},
	}

	for _, v := range floats {
		str := os.Getenv(v.src)
		if str == "" {
			continue
		}

		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			log.Printf("warning: ignoring %s: %s", v.src, err)
			continue
		}
		*v.dst = f
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	*c = Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return c.readFile(path)
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("unable to decode %s: %w", path, err)
	}

	return nil
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "stuff-tracker")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
