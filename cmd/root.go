package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/crich46/spotify-audio-features/logging"
)

var (
	configFile   string
	verbose      bool
	logLevel     string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "featurize",
	Short: "Perceptual audio feature extraction",
	Long: `Extracts a compact set of perceptual features from an audio file:
energy, danceability, tempo, acousticness, and valence.

The pipeline decodes the file to mono PCM at a canonical sample rate,
segments it into overlapping windowed frames, and runs spectral, temporal,
and tonal analysis in parallel before aggregating the results.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, viper.GetViper()); err != nil {
			return err
		}
		return setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/featurize/featurize.yaml)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json",
		"output format (json, yaml, text)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", "featurize"))
		viper.AddConfigPath("/etc/featurize")
		viper.SetConfigName("featurize")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FEATURIZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		// Apply the viper config value to the flag when the flag is not set
		// and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(f.Name, "FEATURIZE_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// setupLogging configures the global logger from the resolved log level
func setupLogging() error {
	levelName := viper.GetString("log_level")
	if viper.GetBool("verbose") {
		levelName = "debug"
	}

	logger := logging.NewDefaultLogger()
	logger.SetLevel(logging.ParseLevel(levelName))
	logging.SetGlobalLogger(logger)
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("output_format", "json")

	// Analysis defaults
	viper.SetDefault("analysis.window_size", 2048)
	viper.SetDefault("analysis.hop_size", 1024)
	viper.SetDefault("analysis.sample_rate", 22050)
	viper.SetDefault("analysis.window_type", "hann")
	viper.SetDefault("analysis.min_bpm", 40)
	viper.SetDefault("analysis.max_bpm", 220)
	viper.SetDefault("analysis.min_frames", 4)
}
