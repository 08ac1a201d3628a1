package handlers

import (
	"context"
	"time"

	"linkedin-job-tracker/internal/config"
	"linkedin-job-tracker/internal/tracker"

	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Context contains deps for all handlers
type Context struct {
	Tracker *tracker.Tracker
	Config  *config.Config
	Logger  *zap.Logger
	Now     func() time.Time
}

func (ctx *Context) now() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return ctx.Now()
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
