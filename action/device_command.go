package action

import (
	"context"
	"log/slog"

	"github.com/rustyeddy/sentinel/devcontrol"
	"github.com/rustyeddy/sentinel/metrics"
	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// DeviceCommand instructs the device-control collaborator to invoke
// Method on the device identified by exactly one of Alias or Address
// (validated mutually exclusive at config load time), passing
// formatted Params (§4.5).
type DeviceCommand struct {
	Controller devcontrol.Controller
	Publisher  *metrics.Publisher // nil is fine; RecordDeviceCommand is then skipped

	Alias   string // resolved through the alias table at execute time
	Address string
	Method  string
	Params  map[string]any

	Logger *slog.Logger
}

func (a *DeviceCommand) Execute(ctx context.Context, obj *state.Object, aliases state.AliasTable) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	warn := func(w string) { logger.Warn(w) }

	address := a.Address
	var config map[string]any
	if a.Alias != "" {
		key, ok := aliases.Key(a.Alias)
		if !ok {
			logger.Warn("device-command: unknown alias", "alias", a.Alias)
			return nil
		}
		address = key
		if params, ok := aliases.Params(a.Alias); ok {
			config = map[string]any(params)
		}
	}

	if a.Controller == nil {
		logger.Warn("device-command action has no controller configured")
		return nil
	}

	method := placeholder.Resolve(a.Method, obj, aliases, warn)
	resolved := placeholder.ResolveValue(a.Params, obj, aliases, warn)
	params, _ := resolved.(map[string]any)

	if err := a.Controller.Invoke(ctx, address, config, method, params); err != nil {
		logger.Warn("device-command failed", "address", address, "method", method, "error", err)
		return nil
	}

	if a.Publisher != nil {
		a.Publisher.RecordDeviceCommand(address, method)
	}
	return nil
}
