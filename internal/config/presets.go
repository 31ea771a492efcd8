package config

import "sort"

var Presets = map[string]*Config{
	"fountain": DefaultConfig(),
	"burst": withEmitter("burst", func(e *EmitterConfig) {
		e.Capacity, e.MaxAlive, e.SpawnBudget = 500, 400, 80
		e.MinLife, e.MaxLife = 30, 60
		e.Spread = 9
	}),
	"drizzle": withEmitter("drizzle", func(e *EmitterConfig) {
		e.Capacity, e.MaxAlive, e.SpawnBudget = 200, 40, 2
		e.Position = [4]float32{0, 4, 0, 1}
		e.MinLife, e.MaxLife = 200, 400
		e.EmitDir = [4]float32{0, 0.2, 0, 0.1}
		e.Spread = 1.5
	}),
	"saturated": withEmitter("saturated", func(e *EmitterConfig) {
		e.Capacity, e.MaxAlive, e.SpawnBudget = 64, 64, 32
		e.MinLife, e.MaxLife = 400, 200
	}),
}

func withEmitter(name string, fn func(*EmitterConfig)) *Config {
	cfg := DefaultConfig()
	cfg.Preset = name
	fn(&cfg.Emitter)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
