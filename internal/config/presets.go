package config

import "sort"

var Presets = map[string]func() *Config{
	"proof": DefaultConfig,
	"open_loop": func() *Config {
		cfg := DefaultConfig()
		cfg.Controller = "none"
		return cfg
	},
	"fixed_rk4": func() *Config {
		cfg := DefaultConfig()
		cfg.Integrator = "rk4"
		cfg.Solver.Adaptive = false
		cfg.Solver.Dt = 0.01
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
