package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/directory"
	"github.com/vk/geogridgo/internal/field"
	"github.com/vk/geogridgo/internal/project"
	"github.com/vk/geogridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: one registry of operator types and one live graph session.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	directory *directory.Directory
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// directory.
func NewApp(outW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		if err := mod.Register(ctx, reg); err != nil {
			// A module that fails to parse its own manifest is a build
			// defect, not a runtime condition.
			panic(fmt.Errorf("failed to register module: %w", err))
		}
	}
	logger.Debug("All operator modules registered.", "types", len(reg.Types()))

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:      outW,
		logger:    logger,
		registry:  reg,
		directory: directory.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Directory returns the live graph session.
func (a *App) Directory() *directory.Directory {
	return a.directory
}

// Connect creates a value connection between two field references
// (`/path.field` each) with a fresh unique id, validating compatibility
// first. It returns the connection id.
func (a *App) Connect(ctx context.Context, fromRef, toRef string) (string, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	from, err := project.ResolveOutput(a.directory, fromRef)
	if err != nil {
		return "", err
	}
	to, err := project.ResolveInput(a.directory, toRef)
	if err != nil {
		return "", err
	}
	if !field.CanConnect(from, to) {
		return "", fmt.Errorf("value of %s does not fit %s", fromRef, toRef)
	}

	id := uuid.NewString()
	if err := to.AddConnection(ctx, id, from, field.ValueConn); err != nil {
		return "", err
	}
	return id, nil
}

// Disconnect removes the value connection with the given id from an input
// field reference.
func (a *App) Disconnect(ctx context.Context, toRef, id string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	to, err := project.ResolveInput(a.directory, toRef)
	if err != nil {
		return err
	}
	return to.RemoveConnection(ctx, id, field.ValueConn)
}
