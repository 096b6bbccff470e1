// Package logging builds the process logger and turns instrumentation events
// into log lines.
package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hanpama/membergraph/internal/eventbus"
	"github.com/hanpama/membergraph/internal/events"
	"github.com/hanpama/membergraph/internal/reqid"
)

// New returns a logger writing to stderr. format is "json" or "console".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var cfg zap.Config
	switch format {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("log format %q: want json or console", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Subscribe logs bus events through log. HTTP requests are logged at info,
// GraphQL operations at info with their errors, and loader and store
// activity at debug. Failed backend calls are warnings.
func Subscribe(b *eventbus.Bus, log *zap.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.On(b, func(ctx context.Context, e events.HTTPFinish) {
			log.Info("http request",
				zap.String("request_id", e.RequestID),
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration),
			)
		}),
		eventbus.On(b, func(ctx context.Context, e events.GraphQLFinish) {
			fields := []zap.Field{
				requestID(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Duration("duration", e.Duration),
			}
			if len(e.Errors) > 0 {
				fields = append(fields, zap.Errors("errors", e.Errors))
			}
			msg := "graphql operation"
			if e.Rejected {
				msg = "graphql rejected"
			}
			log.Info(msg, fields...)
		}),
		eventbus.On(b, func(ctx context.Context, e events.LoaderBatch) {
			if e.Err != nil {
				log.Warn("loader batch failed", requestID(ctx), zap.String("loader", e.Loader), zap.Int("keys", e.Keys), zap.Error(e.Err))
				return
			}
			log.Debug("loader batch", requestID(ctx), zap.String("loader", e.Loader), zap.Int("keys", e.Keys), zap.Duration("duration", e.Duration))
		}),
		eventbus.On(b, func(ctx context.Context, e events.StoreQuery) {
			if e.Err != nil {
				log.Warn("store query failed", requestID(ctx), zap.String("entity", e.Entity), zap.String("op", e.Op), zap.Error(e.Err))
				return
			}
			log.Debug("store query", requestID(ctx), zap.String("entity", e.Entity), zap.String("op", e.Op), zap.Int("rows", e.Rows), zap.Duration("duration", e.Duration))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func requestID(ctx context.Context) zap.Field {
	id, _ := reqid.FromContext(ctx)
	return zap.String("request_id", id)
}
