package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	appName    = "qrform"
	appVersion = "0.1.0"
)

var (
	configFile    string
	flagIP        string
	flagPort      int
	flagStore     string
	flagPublic    string
	liveFeed      bool
	watchTemplate bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Serve a submission form on the LAN and print its QR code",
	Long: `qrform picks one of the host's IPv4 addresses, renders a QR code for
http://<address>:<port> into the public directory and serves the form found
there. Every JSON object posted to /submit is appended to the submissions file.

Run without flags to choose the address interactively.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := resolveConfig(cmd, logger)
		if err != nil {
			return err
		}
		app, err := NewApp(cfg, logger)
		if err != nil {
			return err
		}
		printStartupInfo(cfg)
		return runApp(app)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the qrform config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("%s already exists", configFile)
		}
		if err := SaveConfig(configFile, DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFile)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().StringVar(&flagIP, "ip", "", "address to advertise (skips the prompt)")
	rootCmd.Flags().IntVar(&flagPort, "port", defaultPort, "HTTP port")
	rootCmd.Flags().StringVar(&flagStore, "store", defaultStorePath, "submissions file")
	rootCmd.Flags().StringVar(&flagPublic, "public", defaultPublicDir, "public assets directory")
	rootCmd.Flags().BoolVar(&liveFeed, "live-feed", false, "push submissions to WebSocket clients on /ws")
	rootCmd.Flags().BoolVar(&watchTemplate, "watch-template", false, "reload the form template when it changes")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// resolveConfig layers file, flags and the address prompt into the final Config.
func resolveConfig(cmd *cobra.Command, logger *zap.Logger) (Config, error) {
	cfg := LoadConfig(configFile, logger)

	flags := cmd.Flags()
	if flags.Changed("ip") {
		cfg.Address = flagIP
	}
	if flags.Changed("port") {
		cfg.Port = flagPort
	}
	if flags.Changed("store") {
		cfg.StorePath = flagStore
	}
	if flags.Changed("public") {
		cfg.PublicDir = flagPublic
	}
	if flags.Changed("live-feed") {
		cfg.LiveFeed = liveFeed
	}
	if flags.Changed("watch-template") {
		cfg.WatchTemplate = watchTemplate
	}

	if cfg.Address == "" {
		addrs, err := ListIPv4Addresses()
		if err != nil {
			logger.Warn("could not list network interfaces", zap.Error(err))
		}
		cfg.Address, err = SelectAddress(cmd.InOrStdin(), cmd.OutOrStdout(), addrs)
		if err != nil {
			return Config{}, err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using IP address: %s\n", cfg.Address)
	return cfg, nil
}

func printStartupInfo(cfg Config) {
	fmt.Printf("%s v%s\n", appName, appVersion)
	fmt.Printf("Server running at %s\n", cfg.BaseURL())
	fmt.Printf("Scan %s to submit questions\n", cfg.QRPath())
	fmt.Println()
}
