package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/project"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Run executes the main application logic: load the project document,
// evaluate the graph, print every operator's outputs, and optionally write
// the normalized document back.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	f, err := os.Open(appConfig.ProjectPath)
	if err != nil {
		return fmt.Errorf("opening project: %w", err)
	}
	doc, err := project.DecodeDocument(f)
	f.Close()
	if err != nil {
		return err
	}

	if err := project.Load(ctx, a.registry, a.directory, doc); err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	if err := a.printOutputs(ctx); err != nil {
		return err
	}

	if appConfig.SavePath != "" {
		out, err := os.Create(appConfig.SavePath)
		if err != nil {
			return fmt.Errorf("saving project: %w", err)
		}
		defer out.Close()
		if err := project.WriteTo(a.directory, out); err != nil {
			return err
		}
		a.logger.Info("Project saved.", "path", appConfig.SavePath)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// printOutputs renders every operator's output fields to the output writer
// as one line of JSON per field, sorted by path.
func (a *App) printOutputs(ctx context.Context) error {
	for _, key := range a.directory.Paths() {
		op, ok := a.directory.Find(oppath.MustParse(key))
		if !ok {
			continue
		}
		for _, name := range op.OutputNames() {
			v := op.Output(name).Value()
			if v.IsDeferred() {
				fmt.Fprintf(a.outW, "%s.%s = <deferred>\n", key, name)
				continue
			}
			raw := v.Concrete()
			rendered := []byte("null")
			if !raw.IsNull() {
				var err error
				rendered, err = ctyjson.Marshal(raw, raw.Type())
				if err != nil {
					return fmt.Errorf("rendering %s.%s: %w", key, name, err)
				}
			}
			fmt.Fprintf(a.outW, "%s.%s = %s\n", key, name, rendered)
		}
	}
	return nil
}
