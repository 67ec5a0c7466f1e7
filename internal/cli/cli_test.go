package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contract", "contract"},
		{"master services agreement", "master-services-agreement"},
		{`a/b\c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"..", "document"},
		{"   ", "document"},
		{strings.Repeat("x", 150), strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReportBaseName(t *testing.T) {
	tests := []struct {
		index  int
		source string
		want   string
	}{
		{0, "contracts/nda.txt", "001-nda"},
		{9, "/tmp/lease agreement.md", "010-lease-agreement"},
		{1, "https://example.com/terms.html", "002-terms"},
		{2, "https://example.com/", "003-example"},
		{3, `C:\docs\msa.txt`, "004-msa"},
	}

	for _, tt := range tests {
		if got := reportBaseName(tt.index, tt.source); got != tt.want {
			t.Errorf("reportBaseName(%d, %q) = %q, want %q", tt.index, tt.source, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{fmt.Errorf("analyze x: %w", pipeline.ErrInput), 2},
		{fmt.Errorf("analyze x: %w", pipeline.ErrModelUnavailable), 3},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".clauserisk", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Clauserisk Configuration File") {
		t.Errorf("config file missing header comment")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written config does not validate: %v", err)
	}
	if cfg.Analysis.TopN != 5 || cfg.Analysis.Contamination != 0.3 {
		t.Errorf("analysis defaults = %+v", cfg.Analysis)
	}

	// Refuses to overwrite
	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("version", func(t *testing.T) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"version"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("version: %v", err)
		}
		if !strings.Contains(out.String(), "clauserisk "+Version) {
			t.Errorf("version output = %q", out.String())
		}
	})

	t.Run("catalog", func(t *testing.T) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"catalog", "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("catalog: %v", err)
		}

		var got model.Catalog
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("catalog output is not JSON: %v\n%s", err, out.String())
		}
		want := model.DefaultCatalog()
		if len(got) != len(want) {
			t.Fatalf("catalog has %d entries, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("catalog file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		content := "entries:\n  - category: indemnity\n    remediation: Cap indemnity at fees paid.\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { catalogFile = "" })

		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"catalog", "--json", "--catalog", path})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("catalog: %v", err)
		}
		if !strings.Contains(out.String(), `"indemnity"`) || strings.Contains(out.String(), `"payment"`) {
			t.Errorf("catalog file not applied:\n%s", out.String())
		}
	})
}
