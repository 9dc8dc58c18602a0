package sinks

import (
	"kaetram/client/logging"

	"gopkg.in/natefinch/lumberjack.v2"
)

func newRotatingFile(path string, rotation logging.RotationConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}
}
