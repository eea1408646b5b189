package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/jeryldev/sprintboard/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sb.log")
	logger, closer, err := New(config.LogConfig{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.WithField("sprint_id", 7).Debug("tasks loaded")
	if err := closer.Close(); err != nil {
		t.Fatalf("closing log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"sprint_id":7`) || !strings.Contains(got, `"msg":"tasks loaded"`) {
		t.Errorf("log output = %q, want json entry with sprint_id", got)
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{"info", logrus.InfoLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{" debug ", logrus.DebugLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		logger, _, err := New(config.LogConfig{Level: tt.level, File: Stderr})
		if (err != nil) != tt.wantErr {
			t.Errorf("New(level %q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			continue
		}
		if err == nil && logger.GetLevel() != tt.want {
			t.Errorf("New(level %q).GetLevel() = %v, want %v", tt.level, logger.GetLevel(), tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "info", Format: "xml", File: Stderr}); err == nil {
		t.Error("New with format xml should fail")
	}
}

func TestDefaultPathUsesXDGState(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if want := filepath.Join("/tmp/state", "sprintboard", "sb.log"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
