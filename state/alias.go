package state

import "fmt"

// DeviceParams carries optional per-device construction parameters used
// when a device-command action targets this alias (§4.5 device-command,
// §3 device alias table).
type DeviceParams map[string]any

// AliasTable is a fixed, reload-time name -> entity-key mapping, plus
// optional per-device construction parameters. It never changes between
// reloads; a new AliasTable is built and swapped in wholesale.
type AliasTable struct {
	aliasToKey map[string]string
	params     map[string]DeviceParams
}

// NewAliasTable returns an empty AliasTable; aliases are registered
// with Add.
func NewAliasTable() AliasTable {
	return AliasTable{
		aliasToKey: make(map[string]string),
		params:     make(map[string]DeviceParams),
	}
}

// Add registers an alias bound to an entity key with optional params.
// Returns an error if the alias is already registered -- duplicate
// aliases are a configuration error (§7).
func (a *AliasTable) Add(alias, key string, params DeviceParams) error {
	if _, exists := a.aliasToKey[alias]; exists {
		return fmt.Errorf("duplicate device alias %q", alias)
	}
	if a.aliasToKey == nil {
		a.aliasToKey = make(map[string]string)
	}
	a.aliasToKey[alias] = key
	if params != nil {
		if a.params == nil {
			a.params = make(map[string]DeviceParams)
		}
		a.params[alias] = params
	}
	return nil
}

// Key resolves an alias to its entity key.
func (a AliasTable) Key(alias string) (string, bool) {
	k, ok := a.aliasToKey[alias]
	return k, ok
}

// Params returns the construction parameters bound to an alias, if any.
func (a AliasTable) Params(alias string) (DeviceParams, bool) {
	p, ok := a.params[alias]
	return p, ok
}

// Has reports whether alias is a known alias.
func (a AliasTable) Has(alias string) bool {
	_, ok := a.aliasToKey[alias]
	return ok
}

// Aliases returns every configured alias name, in no particular order.
func (a AliasTable) Aliases() []string {
	names := make([]string, 0, len(a.aliasToKey))
	for name := range a.aliasToKey {
		names = append(names, name)
	}
	return names
}
