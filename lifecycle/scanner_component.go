package lifecycle

import (
	"context"

	"github.com/rustyeddy/sentinel/blescan"
	"github.com/rustyeddy/sentinel/rawevent"
)

// scannerComponent owns the BLE duty-cycle scanner for one graph
// generation (§6 "BLE scanner collaborator"). It is always enabled; a
// config with no BLE rules simply wires an inert default scanner that
// never advertises.
type scannerComponent struct {
	baseComponent

	scanner blescan.Scanner
	graph   *Graph
}

func newScannerComponent(scanner blescan.Scanner, graph *Graph) *scannerComponent {
	return &scannerComponent{
		baseComponent: baseComponent{name: "scanner", enabled: true},
		scanner:       scanner,
		graph:         graph,
	}
}

func (c *scannerComponent) Start(ctx context.Context) error {
	if c.scanner == nil {
		return nil
	}
	if err := c.scanner.Start(ctx, func(evt rawevent.Event) {
		c.graph.ingest(ctx, evt)
	}); err != nil {
		return err
	}
	c.setRunning(true)
	return nil
}

func (c *scannerComponent) Stop(ctx context.Context) error {
	if c.scanner == nil {
		return nil
	}
	err := c.scanner.Stop()
	c.setRunning(false)
	return err
}
