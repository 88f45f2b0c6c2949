package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/4x0/hioctl/acquire"
	"github.com/4x0/hioctl/config"
	"github.com/4x0/hioctl/logger"
	"github.com/4x0/hioctl/record"
	"github.com/4x0/hioctl/script"
	"github.com/4x0/hioctl/sequence"
	"github.com/4x0/hioctl/store"
	"github.com/4x0/hioctl/transport"
)

var runUnsafe bool

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run an acquisition described by a config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAcquisition,
}

func init() {
	runCmd.Flags().BoolVar(&runUnsafe, "unsafe", false, "required when the configured script tier is developer")
}

func runAcquisition(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connect(ctx, &cfg.Host, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := acquire.ApplySetup(client, cfg); err != nil {
		return err
	}

	// A configured routine runs before the sampling loop; both share the
	// client, so their commands never interleave.
	if cfg.Script != nil {
		if err := runConfiguredScript(client, cfg.Script, runUnsafe, log); err != nil {
			return err
		}
	}

	var plan *sequence.Plan
	if cfg.Sequence != nil {
		plan, err = cfg.Sequence.Plan()
		if err != nil {
			return err
		}
	}

	trigger, err := acquire.ParseTriggerSource(cfg.Run.TriggerSource)
	if err != nil {
		return err
	}

	outPath := cfg.Run.Output
	if outPath == "" {
		outPath = record.DefaultFilename(time.Now())
	}
	writer, err := record.Create(outPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	if cfg.Run.SettingsDump {
		settings, err := acquire.Snapshot(client)
		if err != nil {
			return err
		}
		if err := writer.WriteSettings(settings); err != nil {
			return err
		}
	}

	runner, err := acquire.NewRunner(client, acquire.Config{
		Samples:        cfg.Run.SampleCount(),
		Interval:       cfg.Run.Interval(),
		Temperature:    cfg.Measure.Temperature,
		Trigger:        trigger,
		TriggerTimeout: cfg.Run.TriggerTimeout(),
		Plan:           plan,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	var archive *store.Store
	if cfg.Run.Archive != "" {
		archive, err = store.Open(cfg.Run.Archive)
		if err != nil {
			return err
		}
		defer archive.Close()

		if _, err := archive.CreateRun(runner.ID(), time.Now()); err != nil {
			return err
		}
	}

	samples, runErr := runner.Run(ctx)

	for _, s := range samples {
		if err := writer.WriteSample(s); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	log.Info("results written", "path", outPath, "samples", len(samples))

	if archive != nil {
		if err := archive.AppendSamples(runner.ID(), 0, samples); err != nil {
			return err
		}
		status, reason := "completed", ""
		if runErr != nil {
			status, reason = "aborted", runErr.Error()
		}
		if err := archive.FinishRun(runner.ID(), status, reason, len(samples)); err != nil {
			return err
		}
	}

	return runErr
}

// runConfiguredScript executes the routine named by the script config section
// against the run's instrument client.
func runConfiguredScript(inst script.Instrument, sc *config.ScriptConfig, unsafe bool, log logger.Logger) error {
	tier, err := sc.TrustTier()
	if err != nil {
		return err
	}
	if tier == script.Developer {
		if !unsafe {
			return fmt.Errorf("script %s is configured at the developer tier; pass --unsafe to confirm", sc.File)
		}
		log.Warn("running at the developer tier; raw instrument commands are enabled", "file", sc.File)
	}

	src, err := os.ReadFile(sc.File)
	if err != nil {
		return fmt.Errorf("read routine %s: %w", sc.File, err)
	}

	api := script.NewAPI(inst, log, record.PersistSession)
	sandbox := script.NewSandbox(tier, sc.Timeout(), log)

	sess, runErr := sandbox.Run(string(src), api)
	if sess != nil {
		log.Info("routine finished",
			"session", sess.ID.String(),
			"readings", len(sess.Readings()))
	}

	return runErr
}

func connect(ctx context.Context, host *config.HostConfig, log logger.Logger) (*transport.Client, error) {
	tcfg, err := transport.NewConfig(host.Address, host.Port,
		transport.WithConnectTimeout(host.Timeout()),
		transport.WithQueryTimeout(host.Timeout()),
		transport.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	client := transport.NewClient(tcfg)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	return client, nil
}
