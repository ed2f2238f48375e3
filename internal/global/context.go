package global

import (
	"context"
	"time"

	"github.com/nxyyspace/api/internal/configure"
	"github.com/nxyyspace/api/internal/instance"
)

// Context carries the process configuration and the running service
// instances alongside a regular context. Derived contexts share both.
type Context interface {
	context.Context
	Config() *configure.Config
	Inst() *instance.Instances
}

type gCtx struct {
	context.Context
	config *configure.Config
	inst   *instance.Instances
}

func (g *gCtx) Config() *configure.Config {
	return g.config
}

func (g *gCtx) Inst() *instance.Instances {
	return g.inst
}

// New wraps ctx with the process configuration and an empty set of service instances
func New(ctx context.Context, config *configure.Config) Context {
	return &gCtx{
		Context: ctx,
		config:  config,
		inst:    &instance.Instances{},
	}
}

// WithCancel is context.WithCancel keeping the parent's config and instances
func WithCancel(ctx Context) (Context, context.CancelFunc) {
	c, cancel := context.WithCancel(ctx)

	return derive(ctx, c), cancel
}

// WithTimeout is context.WithTimeout keeping the parent's config and instances.
// Startup work like the initial presence fetch is bounded with it.
func WithTimeout(ctx Context, timeout time.Duration) (Context, context.CancelFunc) {
	c, cancel := context.WithTimeout(ctx, timeout)

	return derive(ctx, c), cancel
}

func derive(parent Context, c context.Context) Context {
	return &gCtx{
		Context: c,
		config:  parent.Config(),
		inst:    parent.Inst(),
	}
}
