package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"

	"aria2tm/internal/config"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
}

func mockXDG(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	oldConfigHome := xdg.ConfigHome

	xdg.ConfigHome = tmpDir

	t.Cleanup(func() {
		xdg.ConfigHome = oldConfigHome
	})

	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.Aria2Path != "aria2c" {
		t.Errorf("expected Aria2Path aria2c, got %s", cfg.Aria2Path)
	}
	if cfg.Split != 4 {
		t.Errorf("expected Split 4, got %d", cfg.Split)
	}
	if cfg.MaxConnections != 0 {
		t.Errorf("expected MaxConnections 0 (follow split), got %d", cfg.MaxConnections)
	}
	if cfg.MaxTries != 5 {
		t.Errorf("expected MaxTries 5, got %d", cfg.MaxTries)
	}
	if cfg.FileAllocation != "none" {
		t.Errorf("expected FileAllocation none, got %s", cfg.FileAllocation)
	}
	if cfg.LogLines != 2000 {
		t.Errorf("expected LogLines 2000, got %d", cfg.LogLines)
	}
	if cfg.DownloadDir == "" {
		t.Error("expected a non-empty default download dir")
	}
}

func TestGetConfig_Integration(t *testing.T) {
	t.Run("No Config File Returns Defaults", func(t *testing.T) {
		mockXDG(t)
		resetFlags()

		oldArgs := os.Args
		os.Args = []string{"cmd"}
		defer func() { os.Args = oldArgs }()

		cfg, err := config.GetConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Split != 4 {
			t.Errorf("expected defaults when file missing, got split %d", cfg.Split)
		}
	})

	t.Run("Valid Config File Overrides Defaults", func(t *testing.T) {
		tmpDir := mockXDG(t)
		resetFlags()

		oldArgs := os.Args
		os.Args = []string{"cmd"}
		defer func() { os.Args = oldArgs }()

		yamlContent := `
aria2Path: /opt/aria2/bin/aria2c
split: 8
maxConnectionPerServer: 16
logLines: 500
`
		err := os.WriteFile(filepath.Join(tmpDir, "aria2tm"), []byte(yamlContent), 0o644)
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := config.GetConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Aria2Path != "/opt/aria2/bin/aria2c" {
			t.Errorf("expected aria2Path from file, got %s", cfg.Aria2Path)
		}
		if cfg.Split != 8 {
			t.Errorf("expected Split 8, got %d", cfg.Split)
		}
		if cfg.MaxConnections != 16 {
			t.Errorf("expected MaxConnections 16, got %d", cfg.MaxConnections)
		}
		if cfg.LogLines != 500 {
			t.Errorf("expected LogLines 500, got %d", cfg.LogLines)
		}
		if cfg.MaxTries != 5 {
			t.Errorf("expected MaxTries to remain default 5, got %d", cfg.MaxTries)
		}
	})

	t.Run("Invalid YAML Content", func(t *testing.T) {
		tmpDir := mockXDG(t)
		resetFlags()

		oldArgs := os.Args
		os.Args = []string{"cmd"}
		defer func() { os.Args = oldArgs }()

		// Illegal YAML (tab character)
		err := os.WriteFile(filepath.Join(tmpDir, "aria2tm"), []byte("split:\n\t4"), 0o644)
		if err != nil {
			t.Fatal(err)
		}

		_, err = config.GetConfig()
		if err == nil {
			t.Error("expected YAML unmarshal error, got nil")
		}
	})
}

func TestGetConfig_Flags_OverrideFile(t *testing.T) {
	tmpDir := mockXDG(t)
	resetFlags()

	os.WriteFile(filepath.Join(tmpDir, "aria2tm"), []byte("split: 2\naria2Path: from-file"), 0o644)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{
		"cmd",
		"-split", "12",
		"-aria2", "/usr/local/bin/aria2c",
		"-debug",
	}

	cfg, err := config.GetConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Split != 12 {
		t.Errorf("flag value should overwrite config file. Expected 12, got %d", cfg.Split)
	}
	if cfg.Aria2Path != "/usr/local/bin/aria2c" {
		t.Errorf("flag value should overwrite config file. Expected /usr/local/bin/aria2c, got %s", cfg.Aria2Path)
	}
	if !cfg.Debug {
		t.Error("expected Debug to be set by flag")
	}
}

func TestConfig_Validation_Errors(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{name: "Flag Force Split 0", flags: []string{"-split", "0"}},
		{name: "Flag Force Negative MaxConnections", flags: []string{"-conn", "-1"}},
		{name: "Flag Force Empty Aria2Path", flags: []string{"-aria2", ""}},
		{name: "Flag Force Empty DownloadDir", flags: []string{"-dd", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockXDG(t)
			resetFlags()

			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()
			os.Args = append([]string{"cmd"}, tt.flags...)

			_, err := config.GetConfig()
			if err == nil {
				t.Errorf("expected error for %s, got nil", tt.name)
			}
		})
	}
}
