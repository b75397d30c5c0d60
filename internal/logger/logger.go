package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

// Setup points Logrus at a rotating file (teed to stdout) and returns the
// rotator so other writers, such as the access log, can share it.
func Setup(filename, level string) io.Writer {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}

	out := io.MultiWriter(os.Stdout, rotator)
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)

	return out
}

// Audit logs a named security or admin event.
func Audit(action string, fields logrus.Fields) {
	logrus.WithFields(fields).WithField("action", action).Info("audit")
}

// Security logs a named event that deserves attention, like a failed login.
func Security(action string, fields logrus.Fields) {
	logrus.WithFields(fields).WithField("action", action).Warn("security")
}
