// Package cli implements the textorder command line.
package cli

import (
	"github.com/spf13/cobra"

	"textorder/internal/config"
	"textorder/internal/logger"
)

var version = "dev"

var (
	cfgFile string
	verbose bool

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "textorder",
	Short: "Turn natural-language food orders into priced orders",
	Long: `textorder parses free-form order text such as
"two big macs with extra cheese and a large coke" into structured,
priced orders against a catalog of restaurant menus.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			loaded.LogLevel = "debug"
		}
		cfg = loaded
		log = logger.New("textorder",
			logger.WithOutput(cmd.ErrOrStderr()),
			logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
