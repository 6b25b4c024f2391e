// Package logger builds the service-wide zap logger and the Fiber request
// logging middleware.
package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader carries the request correlation id in and out.
const RequestIDHeader = "X-Request-ID"

const requestIDLocal = "requestID"

// Config configures the zap logger.
type Config struct {
	ServiceName string
	Environment string
	Level       string
	Format      string
}

// New builds a structured zap.Logger and installs it as the zap global.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = normalizeFormat(cfg.Format)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log, err := zapCfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}

	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "nowiht"
	}
	log = log.With(
		zap.String("service", service),
		zap.String("env", strings.TrimSpace(cfg.Environment)),
	)
	zap.ReplaceGlobals(log)
	return log, nil
}

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		return "console"
	}
	return "json"
}

// Middleware assigns a request id and logs every request once it completes.
func Middleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(requestIDLocal, reqID)
		c.Set(RequestIDHeader, reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Error("request failed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
		return err
	}
}

// FromCtx returns the global logger enriched with the request id, if any.
func FromCtx(c *fiber.Ctx) *zap.Logger {
	log := zap.L()
	if id, ok := c.Locals(requestIDLocal).(string); ok && id != "" {
		log = log.With(zap.String("request_id", id))
	}
	return log
}
