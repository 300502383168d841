package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nolangormley/chore-chart/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("prod writes json with app attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "chore-chart")

		logger.Info("forecast refreshed", "periods", 48)

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
		}
		if line["app"] != "chore-chart" || line["version"] != "1.2.3" || line["env"] != "prod" {
			t.Errorf("attributes = %v", line)
		}
		if line["msg"] != "forecast refreshed" {
			t.Errorf("msg = %v", line["msg"])
		}
	})

	t.Run("level filters lower records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}, "dev", "chore-chart")

		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("info written at warn level: %q", buf.String())
		}
	})

	t.Run("dev writes text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}, "dev", "chore-chart")

		logger.Debug("cache hit")
		if !strings.Contains(buf.String(), "cache hit") {
			t.Errorf("output = %q; want the message", buf.String())
		}
		if json.Valid(buf.Bytes()) {
			t.Errorf("dev output is JSON; want console text")
		}
	})
}
