package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLevels(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"INFO", "DEBUG"}, nil},
		{"bogus", []string{"INFO"}, []string{"DEBUG"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(dir, tt.level+".log")
			if err := InitWithFileConfig(tt.level, FileConfig{Path: path, MaxSizeMB: 1}, false); err != nil {
				t.Fatalf("InitWithFileConfig: %v", err)
			}

			Named("snapshot").Debug("sampled frame")
			Named("shading").Info("resolved material")
			Named("assembly").Warn("light skipped")
			Named("export").Error("cannot write output")
			Sync()

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			out := string(data)
			for _, lvl := range tt.want {
				if !strings.Contains(out, lvl) {
					t.Errorf("level %s: missing %s in %q", tt.level, lvl, out)
				}
			}
			for _, lvl := range tt.skip {
				if strings.Contains(out, lvl) {
					t.Errorf("level %s: unexpected %s in %q", tt.level, lvl, out)
				}
			}
		})
	}
}

func TestFileCarriesComponentAndCaller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedexport.log")
	if err := Init("info", path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer InitWriter("info", &bytes.Buffer{})

	Named("texture").Info("converted")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "texture") || !strings.Contains(line, "converted") {
		t.Errorf("got %q, want component and message", line)
	}
	if !strings.Contains(line, "logger_test.go") {
		t.Errorf("got %q, want caller", line)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	got := DefaultFileConfig("export.log")
	want := FileConfig{Path: "export.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if got != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", got, want)
	}
}

func TestNopBeforeInit(t *testing.T) {
	Log = nil
	Sugar = nil
	defer InitWriter("info", &bytes.Buffer{})

	InitWithFileConfig("info", FileConfig{}, false)
	if Log == nil || Sugar == nil {
		t.Fatal("expected a usable logger with no outputs configured")
	}
	Warn("dropped")
}

func TestNamedWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter("warn", &buf); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}

	Named("shading").Warn("unknown model")
	Named("shading").Info("filtered out")
	Sync()

	out := buf.String()
	if !strings.Contains(out, "shading") {
		t.Errorf("expected component name in output, got %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "unknown model") {
		t.Errorf("expected warning line, got %q", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("info line should be filtered at warn level, got %q", out)
	}
}
