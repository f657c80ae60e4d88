// Package blescan is the BLE scanner collaborator contract (§6): it
// delivers one rawevent.Event per observed advertisement at a
// configured duty cycle -- cycle seconds between scan cycles, duration
// seconds active per cycle.
package blescan

import (
	"context"
	"log/slog"
	"time"

	"github.com/rustyeddy/sentinel/rawevent"
)

// Scanner is the interface the lifecycle controller starts and stops.
// A concrete implementation talks to a real BLE radio; this package
// also provides a Mock for development and tests.
type Scanner interface {
	Start(ctx context.Context, handler func(rawevent.Event)) error
	Stop() error
}

// Config governs the scanner's duty cycle (§6: "cycle seconds between
// cycles; duration seconds active per cycle; cycle >= duration").
type Config struct {
	Cycle     time.Duration
	Duration  time.Duration
	Interface string
}

// Mock is a Scanner that periodically replays a fixed set of
// advertisements, standing in for real BLE hardware (§1 treats the
// radio as an external collaborator behind an interface; this package
// never talks to a physical adapter).
type Mock struct {
	Config    Config
	Advertise func() []rawevent.Event

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMock builds a Mock scanner. advertise is called once per active
// duty cycle and its returned events are delivered to the handler.
func NewMock(cfg Config, advertise func() []rawevent.Event) *Mock {
	return &Mock{Config: cfg, Advertise: advertise}
}

// Start begins the duty-cycle loop on its own goroutine. It returns
// once the first cycle has been scheduled; Stop cancels the loop.
func (m *Mock) Start(ctx context.Context, handler func(rawevent.Event)) error {
	cycle := m.Config.Cycle
	if cycle <= 0 {
		cycle = 60 * time.Second
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(cycle)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				m.scanOnce(runCtx, handler)
			}
		}
	}()
	return nil
}

func (m *Mock) scanOnce(ctx context.Context, handler func(rawevent.Event)) {
	if m.Advertise == nil {
		return
	}
	for _, evt := range m.Advertise() {
		select {
		case <-ctx.Done():
			return
		default:
			handler(evt)
		}
	}
}

// Stop cancels the duty-cycle loop and waits for it to exit.
func (m *Mock) Stop() error {
	if m.cancel == nil {
		return nil
	}
	m.cancel()
	<-m.done
	slog.Debug("ble scanner stopped")
	return nil
}
