package config

import (
	"fmt"
	"strings"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Settings are the runtime options read from the config file, environment and flags.
type Settings struct {
	LogLevel      string
	LogFormat     string
	OutputFormat  string
	Solver        calculation.SolverOptions
	ServerAddress string
}

// SetDefaults registers the default value of every runtime key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", "console")
	v.SetDefault("solver.tolerance", "1")
	v.SetDefault("solver.max_iterations", 100)
	v.SetDefault("server.addr", ":8080")
}

// EnvPrefix namespaces the environment variables; logging.level becomes PLANNER_LOGGING_LEVEL.
const EnvPrefix = "PLANNER"

// BindEnv makes every key overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// SettingsFrom reads Settings out of v.
func SettingsFrom(v *viper.Viper) (Settings, error) {
	tol, err := decimal.NewFromString(v.GetString("solver.tolerance"))
	if err != nil {
		return Settings{}, fmt.Errorf("solver.tolerance: %w", err)
	}
	if !tol.IsPositive() {
		return Settings{}, fmt.Errorf("solver.tolerance must be positive, got %s", tol)
	}
	maxIter := v.GetInt("solver.max_iterations")
	if maxIter <= 0 {
		return Settings{}, fmt.Errorf("solver.max_iterations must be positive, got %d", maxIter)
	}
	return Settings{
		LogLevel:      v.GetString("logging.level"),
		LogFormat:     v.GetString("logging.format"),
		OutputFormat:  v.GetString("output.format"),
		Solver:        calculation.SolverOptions{Tolerance: tol, MaxIterations: maxIter},
		ServerAddress: v.GetString("server.addr"),
	}, nil
}
