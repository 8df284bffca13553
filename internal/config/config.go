package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Addr           string   `yaml:"addr"`
	DBURL          string   `yaml:"db_url"`
	DBName         string   `yaml:"db_name"`
	ImageHost      string   `yaml:"image_host"`
	CloudinaryURL  string   `yaml:"cloudinary_url"`
	ImageFolder    string   `yaml:"image_folder"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int64    `yaml:"max_upload_mb"`
}

// MaxUploadMBLimit bounds MAX_UPLOAD_MB; the byte limit is MaxUploadMB<<20.
const MaxUploadMBLimit = 1024

// Default returns the values used when nothing else is configured.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DBName:         "devevent",
		ImageHost:      "cloudinary",
		ImageFolder:    "DevEvent",
		AllowedOrigins: []string{"*"},
		MaxUploadMB:    10,
	}
}

// Load resolves configuration in three layers, later ones winning:
// defaults, the YAML file named by CONFIG_FILE, then environment variables.
// A .env file in the working directory is loaded into the environment first.
//
// DB_URL is always required; CLOUDINARY_URL is required unless IMAGE_HOST=memory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if cfg.DBURL == "" {
		return Config{}, errors.New("DB_URL required")
	}
	if cfg.ImageHost != "memory" && cfg.CloudinaryURL == "" {
		return Config{}, errors.New("CLOUDINARY_URL required")
	}
	if cfg.MaxUploadMB <= 0 || cfg.MaxUploadMB > MaxUploadMBLimit {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be between 1 and %d", MaxUploadMBLimit)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "ADDR")
	setString(&c.DBURL, "DB_URL")
	setString(&c.DBName, "DB_NAME")
	setString(&c.ImageHost, "IMAGE_HOST")
	setString(&c.CloudinaryURL, "CLOUDINARY_URL")
	setString(&c.ImageFolder, "IMAGE_FOLDER")

	if raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); raw != "" {
		c.AllowedOrigins = parseOrigins(raw)
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_UPLOAD_MB")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB must be an integer: %w", err)
		}
		c.MaxUploadMB = n
	}

	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func parseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
