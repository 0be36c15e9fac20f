package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")

	log.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %q", buf.String())
	}

	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json format output = %q, want JSON object", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "info", "text").Info("hello")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("text format produced JSON: %q", buf.String())
	}
}

func TestNewLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "nonsense", "json")

	log.Debug("filtered")
	if buf.Len() != 0 {
		t.Errorf("debug record emitted at default level: %q", buf.String())
	}
	log.Info("kept")
	if buf.Len() == 0 {
		t.Error("info record missing at default level")
	}
}
