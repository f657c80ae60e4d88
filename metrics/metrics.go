// Package metrics exposes the engine's known entities in Prometheus
// exposition format: one gauge per numeric attribute, keyed by
// address, plus an identity series naming each device (§6 "Metrics
// publisher").
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	deviceInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "switchbot_device_info",
		Help: "Constant 1 identity series naming a known device.",
	}, []string{"address", "name", "model"})

	attribute = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "switchbot_device_attribute",
		Help: "Latest numeric attribute value observed for a device.",
	}, []string{"address", "attribute"})

	deviceCommands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_device_commands_total",
		Help: "Count of device-command actions dispatched, by method.",
	}, []string{"address", "method"})
)

func init() {
	prometheus.MustRegister(deviceInfo, attribute, deviceCommands)
}

// Filter allow-lists which addresses and metric names are exposed;
// an empty list allows everything (§6: "optional filters target.addresses
// (allow-list) and target.metrics (allow-list)").
type Filter struct {
	Addresses map[string]bool
	Metrics   map[string]bool
}

// NewFilter builds a Filter from the config's allow-lists. Empty
// slices mean "no restriction".
func NewFilter(addresses, metricNames []string) Filter {
	f := Filter{}
	if len(addresses) > 0 {
		f.Addresses = make(map[string]bool, len(addresses))
		for _, a := range addresses {
			f.Addresses[a] = true
		}
	}
	if len(metricNames) > 0 {
		f.Metrics = make(map[string]bool, len(metricNames))
		for _, m := range metricNames {
			f.Metrics[m] = true
		}
	}
	return f
}

func (f Filter) allowsAddress(addr string) bool {
	return f.Addresses == nil || f.Addresses[addr]
}

func (f Filter) allowsMetric(name string) bool {
	return f.Metrics == nil || f.Metrics[name]
}

// Publisher records entity state into the package's registered
// collectors, gated by a filter.
type Publisher struct {
	filter Filter
}

// NewPublisher returns a Publisher gated by filter.
func NewPublisher(filter Filter) *Publisher {
	return &Publisher{filter: filter}
}

// RecordIdentity sets the identity series for a device. It is called
// for every event whose device carries a name or model; setting the
// same series again is harmless.
func (p *Publisher) RecordIdentity(address, name, model string) {
	if !p.filter.allowsAddress(address) {
		return
	}
	deviceInfo.WithLabelValues(address, name, model).Set(1)
}

// RecordAttribute sets the latest numeric value for one attribute of
// one device.
func (p *Publisher) RecordAttribute(address, attr string, value float64) {
	if !p.filter.allowsAddress(address) || !p.filter.allowsMetric(attr) {
		return
	}
	attribute.WithLabelValues(address, attr).Set(value)
}

// RecordDeviceCommand increments the device-command counter for one
// address/method pair.
func (p *Publisher) RecordDeviceCommand(address, method string) {
	if !p.filter.allowsAddress(address) {
		return
	}
	deviceCommands.WithLabelValues(address, method).Inc()
}

// Handler returns the scrape endpoint (§6: "read-only scrape endpoint").
func Handler() http.Handler {
	return promhttp.Handler()
}
