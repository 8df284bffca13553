package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// clearEnv blanks every variable Load reads so the host environment
// does not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "ADDR", "DB_URL", "DB_NAME", "IMAGE_HOST",
		"CLOUDINARY_URL", "IMAGE_FOLDER", "ALLOWED_ORIGINS", "MAX_UPLOAD_MB",
	} {
		t.Setenv(k, "")
	}
	// Run from an empty dir so no stray .env is picked up.
	t.Chdir(t.TempDir())
}

func TestLoad_RequiresDBURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAGE_HOST", "memory")

	if _, err := Load(); err == nil || err.Error() != "DB_URL required" {
		t.Fatalf("expected DB_URL required, got %v", err)
	}
}

func TestLoad_RequiresCloudinaryURLByDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "memory://")

	if _, err := Load(); err == nil || err.Error() != "CLOUDINARY_URL required" {
		t.Fatalf("expected CLOUDINARY_URL required, got %v", err)
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "mongodb://localhost:27017")
	t.Setenv("CLOUDINARY_URL", "cloudinary://k:s@demo")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://devevent.app ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":8080" || cfg.DBName != "devevent" || cfg.ImageFolder != "DevEvent" || cfg.MaxUploadMB != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	want := []string{"http://localhost:3000", "https://devevent.app"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Fatalf("origins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoad_YAMLFileThenEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
addr: ":9090"
db_url: "postgres://u:p@localhost:5432/devevent"
image_host: memory
image_folder: Events
max_upload_mb: 4
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("IMAGE_FOLDER", "Override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.ImageHost != "memory" || cfg.MaxUploadMB != 4 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.ImageFolder != "Override" {
		t.Fatalf("env should win over yaml, got %q", cfg.ImageFolder)
	}
}

func TestLoad_InvalidMaxUpload(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "memory://")
	t.Setenv("IMAGE_HOST", "memory")
	t.Setenv("MAX_UPLOAD_MB", "lots")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric MAX_UPLOAD_MB")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	for _, k := range []string{"DB_URL", "IMAGE_HOST"} {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		os.Unsetenv("DB_URL")
		os.Unsetenv("IMAGE_HOST")
	})

	env := "DB_URL=memory://\nIMAGE_HOST=memory\n"
	if err := os.WriteFile(".env", []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBURL != "memory://" {
		t.Fatalf("expected .env DB_URL, got %q", cfg.DBURL)
	}
}

func TestLoad_MaxUploadBounded(t *testing.T) {
	for _, v := range []string{"0", "-5", "1025", "9223372036854775807"} {
		clearEnv(t)
		t.Setenv("DB_URL", "memory://")
		t.Setenv("IMAGE_HOST", "memory")
		t.Setenv("MAX_UPLOAD_MB", v)

		if _, err := Load(); err == nil {
			t.Errorf("MAX_UPLOAD_MB=%s: expected error", v)
		}
	}

	clearEnv(t)
	t.Setenv("DB_URL", "memory://")
	t.Setenv("IMAGE_HOST", "memory")
	t.Setenv("MAX_UPLOAD_MB", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if limit := cfg.MaxUploadMB << 20; limit <= 0 {
		t.Fatalf("byte limit overflowed: %d", limit)
	}
}
