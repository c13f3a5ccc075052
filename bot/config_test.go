package bot

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
database:
  path: data/askrelay.db
`)
	carrier, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg, ok := carrier.(*Config)
	if !ok {
		t.Fatalf("carrier type = %T", carrier)
	}
	if cfg.Telegram.AdminID != 42 {
		t.Fatalf("admin_id = %d, want 42", cfg.Telegram.AdminID)
	}
	if cfg.Database.Path != "data/askrelay.db" {
		t.Fatalf("database.path = %q", cfg.Database.Path)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run_mode = %q, want longpoll default", cfg.Telegram.RunMode)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no token", "telegram:\n  admin_id: 42\ndatabase:\n  path: x.db\n"},
		{"no admin", "telegram:\n  token: \"123:abc\"\ndatabase:\n  path: x.db\n"},
		{"no db path", "telegram:\n  token: \"123:abc\"\n  admin_id: 42\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.content)); err == nil {
				t.Fatal("LoadConfig accepted incomplete config")
			}
		})
	}
}
