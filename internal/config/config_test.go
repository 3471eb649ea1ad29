package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/jats/internal/jats"
)

// clearEnv unsets every override so tests see only the file contents.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfig, EnvVersion, EnvCSLStyle, EnvCSLLocale, EnvLogLevel, EnvBibliography} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := DefaultPath(), "/custom/config/jats/config.yml"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := DefaultPath(), filepath.Join(home, ".config", "jats", "config.yml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	t.Setenv(EnvConfig, "")
	if got := Path(""); got != "/xdg/jats/config.yml" {
		t.Errorf("Path(\"\") = %q, want default", got)
	}

	t.Setenv(EnvConfig, "/env/config.yml")
	if got := Path(""); got != "/env/config.yml" {
		t.Errorf("Path(\"\") = %q, want env path", got)
	}
	if got := Path("/flag/config.yml"); got != "/flag/config.yml" {
		t.Errorf("Path(flag) = %q, want flag path", got)
	}
}

func TestLoad_NotFound(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Version != "" || cfg.Journal != nil {
		t.Errorf("Load() = %+v, want empty config", cfg)
	}
}

func TestLoad_Valid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
version: "1.2"
csl:
  style: apa
  locale: en-GB
references: formatted
ids: uuid
log_level: debug
journal:
  title: Brain and Behavior
  identifiers:
    - type: publisher-id
      id: BRB3
  issns:
    - issn: 2162-3279
      publication_type: epub
  publisher_name: Wiley
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	opts := cfg.ExportOptions()
	if opts.Version != "1.2" {
		t.Errorf("Version = %q, want 1.2", opts.Version)
	}
	if opts.CSL.Style != "apa" || opts.CSL.Locale != "en-GB" {
		t.Errorf("CSL = %+v", opts.CSL)
	}
	if opts.References != jats.FormattedReferences {
		t.Errorf("References = %q, want formatted", opts.References)
	}
	if opts.Journal == nil || opts.Journal.Title != "Brain and Behavior" {
		t.Fatalf("Journal = %+v", opts.Journal)
	}
	if len(opts.Journal.ISSNs) != 1 || opts.Journal.ISSNs[0].PublicationType != "epub" {
		t.Errorf("ISSNs = %+v", opts.Journal.ISSNs)
	}
	if id := cfg.IDGenerator()()("fig"); len(id) != len("fig-")+36 {
		t.Errorf("uuid generator produced %q", id)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "version: \"1.1\"\ncsl:\n  style: apa\n")

	t.Setenv(EnvVersion, "1.2")
	t.Setenv(EnvCSLStyle, "vancouver")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Version != "1.2" {
		t.Errorf("Version = %q, want env override 1.2", cfg.Version)
	}
	if cfg.CSL.Style != "vancouver" {
		t.Errorf("CSL.Style = %q, want vancouver", cfg.CSL.Style)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
	if id := cfg.IDGenerator()()("fig"); id != "fig-1" {
		t.Errorf("default generator produced %q, want fig-1", id)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"version", `version: "1.0"`},
		{"references", `references: html`},
		{"ids", `ids: random`},
		{"log level", `log_level: loud`},
		{"style", "csl:\n  style: chicago"},
		{"locale", "csl:\n  locale: not_a_locale!"},
		{"issn", "journal:\n  issns:\n    - issn: 1234-5678"},
		{"missing issn", "journal:\n  issns:\n    - publication_type: ppub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, "version: [unterminated")); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"~", home},
		{"~/refs.jsonl", filepath.Join(home, "refs.jsonl")},
		{"~other/refs.jsonl", "~other/refs.jsonl"},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
