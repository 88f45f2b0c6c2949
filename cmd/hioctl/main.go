package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/4x0/hioctl/logger"
)

var rootCmd = &cobra.Command{
	Use:   "hioctl",
	Short: "Control and data acquisition for bench DMMs over TCP",
	Long: `hioctl configures a bench digital multimeter over its TCP command port,
runs timed acquisitions with optional digital-output sequencing, and records
the results to CSV and an optional SQLite archive.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel string
	logFile  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of the console")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}

	if logFile != "" {
		logger.SetDefault(logger.NewSlogFile(logFile, level, 100, 3))
	} else {
		logger.SetDefault(logger.NewSlog(level, false))
	}

	return nil
}

func parseLogLevel(s string) (logger.Level, error) {
	switch s {
	case "debug":
		return logger.DebugLevel, nil
	case "info":
		return logger.InfoLevel, nil
	case "warn":
		return logger.WarnLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
