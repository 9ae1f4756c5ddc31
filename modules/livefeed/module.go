package livefeed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const feedManifest = `
operator "live_feed" {
  description = "Waits for one event on a socket.io feed and exposes its payload."

  input "url"       { kind = "text" }
  input "namespace" {
    kind    = "text"
    default = "/"
  }
  input "on_event" { kind = "text" }
  input "emit_event" {
    kind     = "text"
    optional = true
  }
  input "emit_data" {
    kind     = "data"
    optional = true
  }
  input "timeout" {
    kind    = "text"
    default = "10s"
  }
  input "insecure_skip_verify" { kind = "toggle" }

  output "payload" { kind = "data" }
}
`

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	payload any
	err     error
}

// OnExecuteLiveFeed is the handler for the 'live_feed' operator type.
func OnExecuteLiveFeed(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	rawURL := inputs["url"].AsString()
	onEvent := inputs["on_event"].AsString()
	logger := ctxlog.FromContext(ctx).With("operator", "live_feed", "url", rawURL, "onEvent", onEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(inputs["timeout"].AsString())
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if inputs["insecure_skip_verify"].True() {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(inputs["namespace"].AsString(), opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	emitEvent := ""
	if v := inputs["emit_event"]; !v.IsNull() {
		emitEvent = v.AsString()
	}
	emitData := wireToAny(inputs["emit_data"])

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "sid", io.Id())
		if emitEvent != "" {
			io.Emit(emitEvent, emitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	io.On(types.EventName(onEvent), func(data ...any) {
		var payload any
		if len(data) > 0 {
			payload = data[0]
		}
		done <- opResult{payload: payload}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event %q", onEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		payload, err := anyToValue(res.payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		return map[string]cty.Value{"payload": payload}, nil
	}
}

// wireToAny converts an open-ended field value into plain Go data for the
// socket client.
func wireToAny(v cty.Value) any {
	if v == cty.NilVal || v.IsNull() {
		return nil
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// anyToValue converts a received payload into an open-ended field value,
// going through its JSON shape.
func anyToValue(payload any) (cty.Value, error) {
	if payload == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}

// Register registers the live_feed operator type with the engine.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	def, err := manifest.ParseDefinition(ctx, "livefeed/live_feed.hcl", feedManifest)
	if err != nil {
		return err
	}
	r.RegisterOperator(&registry.RegisteredOperator{
		Definition: def,
		Execute:    OnExecuteLiveFeed,
	})
	return nil
}
