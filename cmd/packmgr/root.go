package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
)

var (
	cfgFile string
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "packmgr",
	Short: "Validate and deploy content packages",
	Long: `packmgr validates content packages against a deployment policy and drives
the package manager service of a content repository server.

Server settings come from flags, PACKMGR_* environment variables
(PACKMGR_SERVER_URL, PACKMGR_SERVER_USER, ...) or the config file
(default: ~/.config/packmgr/config.yaml):

  server:
    url: http://localhost:4502
    user: admin
    password: admin
    request-timeout: 5m
    service-timeout: 2m`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/packmgr/config.yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.StringP("output", "o", "table", "Output format (table, json, yaml)")
	pf.String("url", api.DefaultBaseURL, "Server base URL")
	pf.StringP("user", "u", api.DefaultUsername, "Server username")
	pf.StringP("password", "p", "", "Server password (prompted on a terminal when unset)")
	pf.Duration("request-timeout", 0, "Timeout for a single request (0 disables)")
	pf.Duration("service-timeout", 0, "How long to wait for the service to come up (0 disables)")
	pf.Bool("wait", false, "Wait for the package manager service before running the command")
	pf.String("history", "", "History database path (default: $XDG_STATE_HOME/packmgr/history.db)")
	pf.Bool("no-history", false, "Do not record remote operations")

	viper.BindPFlag("verbose", pf.Lookup("verbose"))
	viper.BindPFlag("output", pf.Lookup("output"))
	viper.BindPFlag("server.url", pf.Lookup("url"))
	viper.BindPFlag("server.user", pf.Lookup("user"))
	viper.BindPFlag("server.password", pf.Lookup("password"))
	viper.BindPFlag("server.request-timeout", pf.Lookup("request-timeout"))
	viper.BindPFlag("server.service-timeout", pf.Lookup("service-timeout"))
	viper.BindPFlag("server.wait", pf.Lookup("wait"))
	viper.BindPFlag("history.path", pf.Lookup("history"))
	viper.BindPFlag("history.disabled", pf.Lookup("no-history"))
}

func initConfig() error {
	viper.SetEnvPrefix("PACKMGR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "packmgr"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errx.Wrap(ErrReadConfig, err)
	}
	return nil
}

func initLogger() error {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if viper.GetBool("verbose") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := config.Build()
	if err != nil {
		return errx.Wrap(ErrInitLogger, err)
	}
	logger = l
	return nil
}
