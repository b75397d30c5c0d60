package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	logrus "github.com/sirupsen/logrus"
)

func TestSetupWritesRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	out := Setup(file, "warn")
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})

	if logrus.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s, want warn", logrus.GetLevel())
	}

	Audit("users.create", logrus.Fields{"user_id": 1})
	Security("auth.login.fail", logrus.Fields{"email": "x@example.com"})
	if _, err := out.Write([]byte("access line\n")); err != nil {
		t.Fatalf("write access log: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "users.create") {
		t.Error("info audit entry should be filtered at warn level")
	}
	if !strings.Contains(text, "auth.login.fail") || !strings.Contains(text, "access line") {
		t.Errorf("log file missing entries:\n%s", text)
	}
}

func TestSetupUnknownLevelFallsBackToDebug(t *testing.T) {
	Setup(filepath.Join(t.TempDir(), "app.log"), "loud")
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s, want debug", logrus.GetLevel())
	}
}
