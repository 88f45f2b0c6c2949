package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/4x0/hioctl/acquire"
	"github.com/4x0/hioctl/config"
	"github.com/4x0/hioctl/logger"
)

var (
	diagHost       string
	diagPort       int
	diagTimeoutSec float64
)

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Dump the instrument's current setup",
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().StringVar(&diagHost, "host", "", "instrument address")
	diagCmd.Flags().IntVar(&diagPort, "port", config.DefaultPort, "instrument command port")
	diagCmd.Flags().Float64Var(&diagTimeoutSec, "timeout", config.DefaultTimeoutSec, "connect/query timeout in seconds")
	diagCmd.MarkFlagRequired("host")
}

func runDiag(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := config.HostConfig{Address: diagHost, Port: diagPort, TimeoutSec: diagTimeoutSec}
	client, err := connect(ctx, &host, logger.GetLogger())
	if err != nil {
		return err
	}
	defer client.Close()

	settings, err := acquire.Snapshot(client)
	if err != nil {
		return err
	}

	for _, s := range settings {
		fmt.Printf("%s=%s\n", s.Key, s.Value)
	}

	return nil
}
