package pattern

import (
	_ "embed"
)

//go:embed builtin.pat
var builtinSource string

// BuiltinName labels the embedded pattern source in errors and listings.
const BuiltinName = "builtin.pat"

// BuiltinSource returns the embedded pattern source.
func BuiltinSource() string { return builtinSource }

// LoadBuiltin registers the built-in component patterns.
func LoadBuiltin(reg *Registry) error {
	_, err := reg.Load(BuiltinName, builtinSource)
	return err
}
