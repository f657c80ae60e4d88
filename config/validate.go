package config

import (
	"fmt"
	"log/slog"

	"github.com/rustyeddy/sentinel/rawevent"
	"github.com/rustyeddy/sentinel/state"
)

// ValidationError is a configuration error (§7: invalid YAML, unknown
// source, missing required topic/duration, duplicate alias, unknown
// alias referenced by a rule). It always aborts startup or reload,
// keeping the prior config running on reload (§4.8).
type ValidationError struct {
	Path string // e.g. "automations[2].if.topic"
	Msg  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Validate checks d for the configuration-error taxonomy of §7 and
// returns the alias table it derives from d.Devices. warn receives
// non-fatal collision warnings (logged, never abort).
func Validate(d Document, warn func(msg string)) (state.AliasTable, error) {
	if warn == nil {
		warn = func(string) {}
	}

	aliases, err := validateDevices(d.Devices, warn)
	if err != nil {
		return state.AliasTable{}, err
	}

	for i, rule := range d.Automations {
		if err := validateRule(i, rule, aliases); err != nil {
			return state.AliasTable{}, err
		}
	}

	return aliases, nil
}

func validateDevices(devices []Device, warn func(string)) (state.AliasTable, error) {
	aliases := state.NewAliasTable()
	common := make(map[string]bool, len(rawevent.CommonAttributeNames()))
	for _, name := range rawevent.CommonAttributeNames() {
		common[name] = true
	}

	for i, dev := range devices {
		path := fmt.Sprintf("devices[%d]", i)
		if dev.Alias == "" {
			return aliases, &ValidationError{Path: path, Msg: "alias is required"}
		}
		if dev.Address == "" {
			return aliases, &ValidationError{Path: path, Msg: "address is required"}
		}
		if err := aliases.Add(dev.Alias, dev.Address, state.DeviceParams(dev.Params)); err != nil {
			return aliases, &ValidationError{Path: path, Msg: err.Error()}
		}
		if common[dev.Alias] {
			warn(fmt.Sprintf("%s: device alias %q shadows a common attribute name", path, dev.Alias))
		}
	}
	return aliases, nil
}

func validateRule(i int, r Rule, aliases state.AliasTable) error {
	path := fmt.Sprintf("automations[%d]", i)

	switch r.If.Source {
	case "ble-event", "mqtt-event":
	default:
		return &ValidationError{Path: path + ".if.source", Msg: fmt.Sprintf("unknown source %q", r.If.Source)}
	}

	if r.If.Source == "mqtt-event" && r.If.Topic == "" {
		return &ValidationError{Path: path + ".if.topic", Msg: "topic is required for mqtt-event source"}
	}
	if r.If.Source != "mqtt-event" && r.If.Topic != "" {
		return &ValidationError{Path: path + ".if.topic", Msg: "topic is only valid for mqtt-event source"}
	}

	if r.If.Device != "" && !aliases.Has(r.If.Device) {
		return &ValidationError{Path: path + ".if.device", Msg: fmt.Sprintf("unknown device alias %q", r.If.Device)}
	}

	for j, act := range r.Then {
		if err := validateAction(fmt.Sprintf("%s.then[%d]", path, j), act, aliases); err != nil {
			return err
		}
	}
	return nil
}

func validateAction(path string, a Action, aliases state.AliasTable) error {
	switch a.Type {
	case "log", "shell", "webhook", "mqtt-publish":
	case "device-command":
		hasAlias := a.Alias != ""
		hasAddress := a.Address != ""
		if hasAlias == hasAddress {
			return &ValidationError{Path: path, Msg: "device-command requires exactly one of alias or address"}
		}
		if hasAlias && !aliases.Has(a.Alias) {
			return &ValidationError{Path: path + ".alias", Msg: fmt.Sprintf("unknown device alias %q", a.Alias)}
		}
	default:
		return &ValidationError{Path: path + ".type", Msg: fmt.Sprintf("unknown action type %q", a.Type)}
	}
	return nil
}

// LogWarning is the default warn callback wired into Validate by
// callers that have not yet built their final logger.
func LogWarning(msg string) {
	slog.Warn(msg)
}
