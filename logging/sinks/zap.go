package sinks

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kaetram/client/logging"
)

// Zap forwards events to a zap logger as structured entries.
type Zap struct {
	logger *zap.Logger
}

// NewZap wraps logger. A nil logger discards events.
func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

// NewZapFile builds a production encoder writing JSON lines to a rotating file.
func NewZapFile(path string, rotation logging.RotationConfig) *Zap {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(newRotatingFile(path, rotation)),
		zapcore.DebugLevel,
	)
	return NewZap(zap.New(core))
}

func (s *Zap) Write(event logging.Event) error {
	fields := make([]zap.Field, 0, 6+len(event.Extra))
	fields = append(fields,
		zap.Uint64("tick", event.Tick),
		zap.Time("eventTime", event.Time),
		zap.String("actor", formatEntity(event.Actor)),
	)
	if event.Category != "" {
		fields = append(fields, zap.String("category", event.Category))
	}
	if len(event.Targets) > 0 {
		fields = append(fields, zap.Any("targets", event.Targets))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	for key, value := range event.Extra {
		fields = append(fields, zap.Any(key, value))
	}
	if ce := s.logger.Check(zapLevel(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (s *Zap) Close(context.Context) error {
	// Sync fails on console descriptors on some platforms.
	_ = s.logger.Sync()
	return nil
}

func zapLevel(sev logging.Severity) zapcore.Level {
	switch sev {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
