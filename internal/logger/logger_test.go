package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"cellar/internal/logger"

	"github.com/charmbracelet/log"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer

	logger.Setup(&buf, false, true)
	log.Debug("hidden")
	log.Warn("shown", "unit", 3)
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug output without verbose mode: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "CELLAR") || !strings.Contains(buf.String(), "unit=3") {
		t.Errorf("expected prefixed structured warning, got %q", buf.String())
	}

	buf.Reset()
	logger.Setup(&buf, true, true)
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug output in verbose mode, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected no escapes with colour off, got %q", buf.String())
	}

	logger.Setup(&bytes.Buffer{}, false, true)
}
