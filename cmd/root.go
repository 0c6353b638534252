package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/patternlab/ctlaunch/internal/deploy"
	"github.com/patternlab/ctlaunch/internal/links"
	"github.com/patternlab/ctlaunch/internal/selector"
)

var (
	cfgFile     string
	historyFile string
	labsDir     string
	space       string
	prod        bool
	verbose     bool
	noSpinner   bool
	Version     = "dev"

	logger = zap.NewNop()
)

// Default tool settings
const (
	defaultExtension   = ".tsx"
	defaultInclude     = "**/*.tsx"
	defaultCTCommand   = "deno task ct"
	defaultHistoryName = ".launcher-history.json"
	defaultOpenTimeout = 10 * time.Second
)

var rootCmd = &cobra.Command{
	Use:     "ctlaunch",
	Version: Version,
	Short:   "Pattern Launcher - deploy patterns and link charms",
	Long: `ctlaunch deploys CommonTools patterns with the ct CLI, remembers where
they went, and suggests links between the charms you deployed recently.

Run without arguments for the interactive launcher.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(viper.GetBool("verbose"))
		if err != nil {
			return err
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLaunch(cmd.Context())
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// IsQuiet reports errors that end the process without an error message
func IsQuiet(err error) bool {
	return errors.Is(err, selector.ErrAborted)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ctlaunch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "launcher history file (default is ./"+defaultHistoryName+")")
	rootCmd.PersistentFlags().StringVar(&labsDir, "labs-dir", "", "labs checkout the ct CLI runs in")
	rootCmd.PersistentFlags().StringVar(&space, "space", "", "space to deploy into (skips the space menu)")
	rootCmd.PersistentFlags().BoolVar(&prod, "prod", false, "deploy to production instead of localhost")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noSpinner, "no-spinner", false, "disable spinner animations")

	viper.BindPFlag("history_file", rootCmd.PersistentFlags().Lookup("history-file"))
	viper.BindPFlag("labs_dir", rootCmd.PersistentFlags().Lookup("labs-dir"))
	viper.BindPFlag("space", rootCmd.PersistentFlags().Lookup("space"))
	viper.BindPFlag("prod", rootCmd.PersistentFlags().Lookup("prod"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no_spinner", rootCmd.PersistentFlags().Lookup("no-spinner"))

	rootCmd.AddCommand(deployCmd, linkCmd, historyCmd)
}

func setDefaults(cwd string) {
	viper.SetDefault("patterns_root", cwd)
	viper.SetDefault("extension", defaultExtension)
	viper.SetDefault("include", defaultInclude)
	viper.SetDefault("labs_dir", "")
	viper.SetDefault("identity", "")
	viper.SetDefault("endpoints.local", deploy.DefaultLocalEndpoint)
	viper.SetDefault("endpoints.prod", deploy.DefaultProdEndpoint)
	viper.SetDefault("ct.command", defaultCTCommand)
	viper.SetDefault("history_file", filepath.Join(cwd, defaultHistoryName))
	viper.SetDefault("suggestions.max", links.DefaultMaxCandidates)
	viper.SetDefault("suggestions.artifacts", links.DefaultMaxArtifacts)
	viper.SetDefault("open_timeout", defaultOpenTimeout)
}

func initConfig() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding working directory: %v\n", err)
		os.Exit(1)
	}

	// Values already in the environment win over .env files
	loadEnvFile(filepath.Join(cwd, ".env"))

	setDefaults(cwd)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".ctlaunch"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CTLAUNCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", path, err)
	}
}
