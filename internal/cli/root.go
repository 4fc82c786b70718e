package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mardigraph/graphscribe/internal/logging"
	"github.com/mardigraph/graphscribe/internal/model"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "graphscribe",
	Short: "Graphscribe - publish scientific workflow documentation to a knowledge graph",
	Long: `Graphscribe ingests a flat answer file describing a scientific workflow
(research objective, publication, mathematical model, methods, software,
datasets, disciplines) and reconciles every mentioned entity against a
target knowledge graph and a read-only reference graph.

Entities that already exist anywhere are reused; missing ones are created
in dependency order and linked under a single workflow entity. The fully
resolved answers are rendered into a workflow document.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("graphscribe v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.graphscribe/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.graphscribe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GRAPHSCRIBE_*
	viper.SetEnvPrefix("GRAPHSCRIBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, logFormat)
}

// loadConfig merges defaults, the config file and the environment into
// one Config.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Target.Username == "" {
		cfg.Target.Username = os.Getenv("GRAPHSCRIBE_TARGET_USERNAME")
	}
	if cfg.Target.Password == "" {
		cfg.Target.Password = os.Getenv("GRAPHSCRIBE_TARGET_PASSWORD")
	}
	cfg.Output.Verbose = verbose
	return cfg, nil
}
