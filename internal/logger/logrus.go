// Package logger carries a logrus entry through a context.
package logger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	ctxKeyLog ctxKey = iota
)

// Entry returns the entry stored by WithLogEntry, or one on the standard
// logger when the context carries none.
func Entry(ctx context.Context) *logrus.Entry {
	if e, ok := ctx.Value(ctxKeyLog).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// WithLogEntry stores e in ctx.
func WithLogEntry(ctx context.Context, e *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKeyLog, e)
}

// WithRun stores an entry tagged with a fresh run id and returns it as well.
func WithRun(ctx context.Context, log *logrus.Logger) (context.Context, *logrus.Entry) {
	e := log.WithField("run", uuid.NewString())
	return WithLogEntry(ctx, e), e
}
