package zsclient

import (
	"context"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// Module provides a zsubs.Client built from a zsubs.Config supplied by the
// application, and closes it when the application stops.
//
//	app := fx.New(
//	    fx.Provide(func() zsubs.Config { return zsubs.Config{AccessToken: token} }),
//	    zsclient.Module,
//	    fx.Invoke(func(c zsubs.Client) { ... }),
//	)
var Module = fx.Module("zsubs",
	fx.Provide(NewWithDI),
	fx.Invoke(RegisterLifecycle),
)

// Params are the dependencies of NewWithDI. Optional values override the
// matching Config fields when provided.
type Params struct {
	fx.In

	Config         zsubs.Config
	Logger         zsubs.Logger         `optional:"true"`
	Metrics        *zsubs.Metrics       `optional:"true"`
	TracerProvider trace.TracerProvider `optional:"true"`
	Registry       *zsubs.Registry      `optional:"true"`
}

// NewWithDI creates the client from injected dependencies.
func NewWithDI(params Params) (zsubs.Client, error) {
	config := params.Config

	if params.Logger != nil {
		config.Logger = params.Logger
	}

	if params.Metrics != nil {
		config.Metrics = params.Metrics
	}

	if params.TracerProvider != nil {
		config.TracerProvider = params.TracerProvider
	}

	if params.Registry != nil {
		config.Registry = params.Registry
	}

	return New(context.Background(), &config)
}

// LifecycleParams are the dependencies of RegisterLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    zsubs.Client
}

// RegisterLifecycle closes the client, and with it any cache connection, on
// application stop.
func RegisterLifecycle(params LifecycleParams) {
	if params.Client == nil {
		return
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Client.Close()
		},
	})
}
