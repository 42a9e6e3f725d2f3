package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/scoring"
)

const (
	defaultProbeTimeoutSeconds = 30
	defaultRateLimit           = 0
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Scan ScanRuntimeConfig
}

// ScanRuntimeConfig consolidates flag-driven settings for the scan
// command.
type ScanRuntimeConfig struct {
	TimeoutSecs      int
	RateLimit        int
	GraphQLPath      string
	Format           string
	TelemetryEnabled bool
	ProgressEnabled  bool
	Weights          scoring.Weights
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanRuntimeConfig{
			TimeoutSecs: defaultProbeTimeoutSeconds,
			RateLimit:   defaultRateLimit,
			GraphQLPath: "/graphql",
			Format:      "json",
			Weights:     scoring.DefaultWeights(),
		},
	}
}

// applyConfigDefaults merges config file defaults into the runtime config
// when the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("scan.timeout_secs") {
		applyIntDefault(cmd.Flags(), "timeout", viper.GetInt("scan.timeout_secs"), func(v int) {
			cliConfig.Scan.TimeoutSecs = v
		})
	}

	if viper.IsSet("scan.rate_limit") {
		applyIntDefault(cmd.Flags(), "rate", viper.GetInt("scan.rate_limit"), func(v int) {
			cliConfig.Scan.RateLimit = v
		})
	}

	if viper.IsSet("scan.graphql_path") {
		setStringFlagIfUnset(cmd.Flags(), "graphql-path", viper.GetString("scan.graphql_path"))
	}

	if viper.IsSet("scan.format") {
		setStringFlagIfUnset(cmd.Flags(), "format", viper.GetString("scan.format"))
	}

	if viper.IsSet("scan.telemetry") {
		applyBoolDefault(cmd.Flags(), "telemetry", viper.GetBool("scan.telemetry"), func(v bool) {
			cliConfig.Scan.TelemetryEnabled = v
		})
	}

	applyWeightOverrides()
}

// applyWeightOverrides lets operators retune severity weights under the
// scan.weights config key.
func applyWeightOverrides() {
	if !viper.IsSet("scan.weights") {
		return
	}
	weights := cliConfig.Scan.Weights
	for _, sev := range finding.AllSeverities() {
		key := "scan.weights." + string(sev)
		if viper.IsSet(key) {
			weights[sev] = viper.GetInt(key)
		}
	}
	cliConfig.Scan.Weights = weights
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
