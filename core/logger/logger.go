package logger

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output encodings accepted in Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// rayIDKey is the fiber Locals key the rayid middleware stores the ID under.
const rayIDKey = "ray_id"

// New builds a logger for cfg. Level "debug" uses zap's development preset;
// every other level starts from the production preset.
func New(cfg *Config) (*zap.Logger, error) {
	var zc zap.Config
	switch cfg.Level {
	case "debug":
		zc = zap.NewDevelopmentConfig()
	case "":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewProductionConfig()
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}

	switch cfg.Format {
	case FormatConsole:
		zc.Encoding = FormatConsole
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	case FormatJSON, "":
		zc.Encoding = FormatJSON
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.MessageKey = "message"

	return zc.Build()
}

// WithRayID returns l with the request's ray_id attached, or l unchanged when
// the request has none.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if rid, ok := c.Locals(rayIDKey).(string); ok && rid != "" {
		return l.With(zap.String(rayIDKey, rid))
	}
	return l
}
