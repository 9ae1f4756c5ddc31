package http_fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const fetchManifest = `
operator "http_fetch" {
  description = "Fetches a URL and exposes the decoded response body."

  input "url" { kind = "text" }
  input "headers" {
    kind     = "data"
    type     = map(string)
    optional = true
  }
  input "timeout" {
    kind    = "text"
    default = "10s"
  }

  output "status" { kind = "number" }
  output "body"   { kind = "data" }
}
`

// OnExecuteFetch is the handler for the 'http_fetch' operator type.
func OnExecuteFetch(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	rawURL := inputs["url"].AsString()
	logger := ctxlog.FromContext(ctx).With("operator", "http_fetch", "url", rawURL)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	timeout, err := time.ParseDuration(inputs["timeout"].AsString())
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "error", err)
		timeout = 10 * time.Second
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(opCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if headers := inputs["headers"]; !headers.IsNull() {
		for name, v := range headers.AsValueMap() {
			req.Header.Set(name, v.AsString())
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	body := decodeBody(raw)
	logger.Info("Fetch complete", "status", resp.StatusCode, "bytes", len(raw))

	return map[string]cty.Value{
		"status": cty.NumberIntVal(int64(resp.StatusCode)),
		"body":   body,
	}, nil
}

// decodeBody exposes JSON responses structurally and anything else as a
// plain string.
func decodeBody(raw []byte) cty.Value {
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.StringVal(string(raw))
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.StringVal(string(raw))
	}
	return v
}

// Register registers the http_fetch operator type with the engine.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	def, err := manifest.ParseDefinition(ctx, "http_fetch/http_fetch.hcl", fetchManifest)
	if err != nil {
		return err
	}
	r.RegisterOperator(&registry.RegisteredOperator{
		Definition: def,
		Execute:    OnExecuteFetch,
	})
	return nil
}
