package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/metrics"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
	"github.com/san-kum/partsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of emitter runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Zero fields fall back to the
// preset's values.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Frames    int                `yaml:"frames"`
	Dt        float32            `yaml:"dt"`
	Seed      uint64             `yaml:"seed"`
	Overrides map[string]float64 `yaml:"overrides"`
	SaveAs    string             `yaml:"save_as"`
}

// StepResult pairs a step's outcome with the run id it was stored under.
type StepResult struct {
	Step   int
	Preset string
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}

	return &scenario, nil
}

// RunScenario executes all steps in order. Steps with SaveAs set are
// written to st, which may be nil when nothing is saved.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("running scenario step", slog.Int("step", i+1), slog.Int("of", len(scenario.Steps)), slog.String("preset", step.Preset))

		cfg, err := stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := runOnce(ctx, cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Preset: cfg.Preset, Result: result}
		if step.SaveAs != "" && st != nil {
			meta := storage.RunMetadata{Preset: step.SaveAs, Seed: cfg.Seed, Dt: cfg.Dt, Frames: cfg.Frames, Emitter: cfg.Emitter}
			if sr.RunID, err = st.Save(meta, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

func stepConfig(step ScenarioStep) (*config.Config, error) {
	name := step.Preset
	if name == "" {
		name = config.DefaultPreset
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return applyStep(cfg, step)
}

// applyStep layers the non-zero fields and overrides of step onto cfg.
func applyStep(cfg *config.Config, step ScenarioStep) (*config.Config, error) {
	if step.Frames > 0 {
		cfg.Frames = step.Frames
	}
	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	for k, v := range step.Overrides {
		if err := ApplyOverride(&cfg.Emitter, k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runOnce(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sim.Result, error) {
	pool, err := particle.New(cfg.Particle(), particle.NewRand(cfg.Seed), &particle.ManualClock{}, particle.WithLogger(log))
	if err != nil {
		return nil, err
	}
	r := sim.New(pool)
	for _, m := range metrics.All() {
		r.AddMetric(m)
	}
	return r.Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt, Seed: cfg.Seed})
}

// ApplyOverride sets one numeric emitter field by its YAML name.
func ApplyOverride(e *config.EmitterConfig, key string, v float64) error {
	switch key {
	case "capacity":
		e.Capacity = int(v)
	case "max_alive":
		e.MaxAlive = int(v)
	case "spawn_budget":
		e.SpawnBudget = int(v)
	case "min_life":
		e.MinLife = int(v)
	case "max_life":
		e.MaxLife = int(v)
	case "spread":
		e.Spread = float32(v)
	case "x":
		e.Position[0] = float32(v)
	case "y":
		e.Position[1] = float32(v)
	case "z":
		e.Position[2] = float32(v)
	case "gravity":
		e.Gravity[1] = float32(v)
	default:
		return fmt.Errorf("unknown emitter parameter %q", key)
	}
	return nil
}

// ParameterSweep runs one configuration across a range of values of one
// emitter parameter. Base takes precedence over Preset when set.
type ParameterSweep struct {
	Base      *config.Config
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
	Dt        float32
	Seed      uint64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalAlive int
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, log *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		step := ScenarioStep{
			Preset:    sweep.Preset,
			Frames:    sweep.Frames,
			Dt:        sweep.Dt,
			Seed:      sweep.Seed,
			Overrides: map[string]float64{sweep.ParamName: paramVal},
		}
		var cfg *config.Config
		var err error
		if sweep.Base != nil {
			cfg, err = applyStep(sweep.Base.Clone(), step)
		} else {
			cfg, err = stepConfig(step)
		}
		if err != nil {
			return nil, err
		}

		result, err := runOnce(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			FinalAlive: result.FinalAlive,
			Metrics:    result.Metrics,
		})

		log.Info("sweep step done", slog.Int("step", i+1), slog.Int("of", sweep.NumSteps), slog.String("param", sweep.ParamName), slog.Float64("value", paramVal))
	}

	return results, nil
}
