package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trainer.log")
	logger, err := New(Config{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("model saved")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"model saved"`) {
		t.Errorf("unexpected log content: %s", content)
	}
}
