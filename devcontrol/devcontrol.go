// Package devcontrol is the device-command collaborator contract
// (§6 "Device controller"): invoke a named method on a device,
// identified by address, with call-time params and the device's
// construction parameters from the alias table.
package devcontrol

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Controller abstracts whatever physically drives a device (BLE
// write, vendor HTTP API, local GPIO, ...). The engine itself never
// talks to hardware directly; it only invokes named methods through
// this interface, mirroring the teacher's Opener/OnOff device
// abstraction generalized to an arbitrary method name.
type Controller interface {
	// Invoke calls method on the device at address, passing params as
	// call arguments and config as the device's alias-table construction
	// parameters (e.g. a device-family-specific API key or channel).
	Invoke(ctx context.Context, address string, config map[string]any, method string, params map[string]any) error
}

// LoggingController is a Controller that records every invocation and
// logs it at info level, used when no concrete device backend is
// configured. It lets the engine run end-to-end -- condition, trigger,
// runner, cooldown -- without real hardware, and is a reasonable
// default for a pure-MQTT deployment with no device-command actions.
type LoggingController struct {
	mu    sync.Mutex
	calls []Invocation
}

// Invocation records one accepted device-command dispatch, tagged
// with a correlation ID for cross-referencing with log output.
type Invocation struct {
	ID      string
	Address string
	Method  string
	Params  map[string]any
}

// NewLoggingController returns a Controller suitable as the engine's
// default device-command sink.
func NewLoggingController() *LoggingController {
	return &LoggingController{}
}

func (c *LoggingController) Invoke(ctx context.Context, address string, config map[string]any, method string, params map[string]any) error {
	id := uuid.NewString()
	c.mu.Lock()
	c.calls = append(c.calls, Invocation{ID: id, Address: address, Method: method, Params: params})
	c.mu.Unlock()

	slog.Info("device-command", "id", id, "address", address, "method", method, "params", params)
	return nil
}

// Calls returns every invocation recorded so far, in order, for tests
// to inspect. Command counts for metrics are recorded separately, by
// the device-command action through metrics.Publisher.
func (c *LoggingController) Calls() []Invocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Invocation, len(c.calls))
	copy(out, c.calls)
	return out
}

// ErrUnknownDevice names the failure to locate a device-command
// action's target. No code in this module returns it: the
// device-command action logs a warning and returns nil for an
// unknown alias.
var ErrUnknownDevice = fmt.Errorf("devcontrol: unknown device")
