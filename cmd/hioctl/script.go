package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/4x0/hioctl/config"
	"github.com/4x0/hioctl/logger"
	"github.com/4x0/hioctl/record"
	"github.com/4x0/hioctl/script"
)

var (
	scriptHost       string
	scriptPort       int
	scriptTimeoutSec float64
	scriptTier       string
	scriptBudgetSec  float64
	scriptUnsafe     bool
)

var scriptCmd = &cobra.Command{
	Use:   "script <file>",
	Short: "Run a sandboxed measurement routine",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	scriptCmd.Flags().StringVar(&scriptHost, "host", "", "instrument address")
	scriptCmd.Flags().IntVar(&scriptPort, "port", config.DefaultPort, "instrument command port")
	scriptCmd.Flags().Float64Var(&scriptTimeoutSec, "timeout", config.DefaultTimeoutSec, "connect/query timeout in seconds")
	scriptCmd.Flags().StringVar(&scriptTier, "tier", config.DefaultScriptTier, "trust tier (restricted, trusted, developer)")
	scriptCmd.Flags().Float64Var(&scriptBudgetSec, "budget", config.DefaultScriptTimeout, "routine wall-clock budget in seconds")
	scriptCmd.Flags().BoolVar(&scriptUnsafe, "unsafe", false, "required to run at the developer tier")
	scriptCmd.MarkFlagRequired("host")
}

func runScript(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	tier, err := script.ParseTier(scriptTier)
	if err != nil {
		return err
	}
	if tier == script.Developer {
		if !scriptUnsafe {
			return fmt.Errorf("the developer tier exposes raw instrument commands; pass --unsafe to confirm")
		}
		log.Warn("running at the developer tier; raw instrument commands are enabled")
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read routine %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := config.HostConfig{Address: scriptHost, Port: scriptPort, TimeoutSec: scriptTimeoutSec}
	client, err := connect(ctx, &host, log)
	if err != nil {
		return err
	}
	defer client.Close()

	api := script.NewAPI(client, log, record.PersistSession)
	sandbox := script.NewSandbox(tier, time.Duration(scriptBudgetSec*float64(time.Second)), log)

	sess, runErr := sandbox.Run(string(src), api)
	if sess != nil {
		readings := sess.Readings()
		log.Info("routine finished",
			"session", sess.ID.String(),
			"readings", len(readings))
		if len(readings) > 0 {
			st := sess.Stats()
			fmt.Printf("readings=%d mean=%g min=%g max=%g stddev=%g\n",
				st.Count, st.Mean, st.Min, st.Max, st.Stddev)
		}
	}

	return runErr
}
