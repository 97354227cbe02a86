package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// useConfigHome points XDG_CONFIG_HOME at a fresh temp dir and resets the cache.
func useConfigHome(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeGlobalConfig(t *testing.T, configHome string, cfg GlobalConfig) {
	t.Helper()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/todo/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "todo", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	useConfigHome(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if cfg.DBFile != "" || cfg.IndexFile != "" || cfg.Human {
		t.Errorf("LoadGlobalConfig() = %+v, want empty config", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	home := useConfigHome(t)
	writeGlobalConfig(t, home, GlobalConfig{
		DBFile:    "~/notes/tasks.json",
		IndexFile: "/tmp/tasks.db",
		Human:     true,
	})

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	// Check tilde expansion
	userHome, _ := os.UserHomeDir()
	if want := filepath.Join(userHome, "notes/tasks.json"); cfg.DBFile != want {
		t.Errorf("DBFile = %q, want %q", cfg.DBFile, want)
	}
	if cfg.IndexFile != "/tmp/tasks.db" {
		t.Errorf("IndexFile = %q, want /tmp/tasks.db", cfg.IndexFile)
	}
	if !cfg.Human {
		t.Error("Human = false, want true")
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	home := useConfigHome(t)
	dir := filepath.Join(home, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte("db_file: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	home := useConfigHome(t)
	writeGlobalConfig(t, home, GlobalConfig{DBFile: "cached.json"})

	cfg1, _ := LoadGlobalConfig()
	if cfg1.DBFile != "cached.json" {
		t.Errorf("First load: DBFile = %q, want cached.json", cfg1.DBFile)
	}

	writeGlobalConfig(t, home, GlobalConfig{DBFile: "modified.json"})

	// Second load should return cached value
	cfg2, _ := LoadGlobalConfig()
	if cfg2.DBFile != "cached.json" {
		t.Errorf("Second load: DBFile = %q, want cached.json (cached)", cfg2.DBFile)
	}

	ResetGlobalConfigCache()

	cfg3, _ := LoadGlobalConfig()
	if cfg3.DBFile != "modified.json" {
		t.Errorf("Third load: DBFile = %q, want modified.json", cfg3.DBFile)
	}
}

func TestGlobalConfig_SaveAndReload(t *testing.T) {
	useConfigHome(t)

	cfg := &GlobalConfig{}
	if err := cfg.Set(KeyDBFile, "/data/tasks.json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set(KeyHuman, "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ResetGlobalConfigCache()
	loaded, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if loaded.DBFile != "/data/tasks.json" || !loaded.Human {
		t.Errorf("reloaded config = %+v", loaded)
	}
}

func TestGlobalConfig_GetSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{KeyDBFile, "a.json", "a.json", false},
		{KeyIndexFile, "a.db", "a.db", false},
		{KeyHuman, "true", "true", false},
		{KeyHuman, "0", "false", false},
		{KeyHuman, "maybe", "", true},
		{"color", "auto", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &GlobalConfig{}
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative.json", "relative.json"},
		{"~/tasks.json", filepath.Join(home, "tasks.json")},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
