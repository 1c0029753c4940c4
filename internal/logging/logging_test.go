package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("dropped", nil)
	logger.Info("dropped too", nil)
	logger.Warn("kept", nil)
	logger.Error("also kept", nil)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("messages below level leaked: %q", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "also kept") {
		t.Errorf("messages at or above level missing: %q", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: DebugLevel, Output: &buf})

	logger.Info("created node", map[string]interface{}{"coordinate": "1/2"})

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "info" || entry.Message != "created node" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields["coordinate"] != "1/2" {
		t.Errorf("fields not carried through: %+v", entry.Fields)
	}
}

func TestLoggerHumanFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: DebugLevel, Output: &buf})

	logger.Debug("moved subtree", map[string]interface{}{"rows": 3})
	if !strings.Contains(buf.String(), "rows=3") {
		t.Errorf("human format should render fields: %q", buf.String())
	}
}
