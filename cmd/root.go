package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "gqlaudit",
	Short: "GraphQL endpoint security auditor (for lawful testing only)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".gqlaudit")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()

		// init logger
		l, _ := zap.NewProduction()
		logger = l.Sugar()

		applyConfigDefaults(cmd)

		return nil
	},
}

// Execute runs the root command and exits nonzero on command failure or
// when the scan surfaced HIGH/CRITICAL findings.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if scanExitCode != 0 {
		os.Exit(scanExitCode)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gqlaudit.yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(perfCmd)
	rootCmd.AddCommand(versionCmd)
}
