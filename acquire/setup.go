package acquire

import (
	"strconv"
	"time"

	"github.com/4x0/hioctl/config"
	"github.com/4x0/hioctl/scpi"
)

// ApplySetup translates the configured instrument setup into command strings
// and enqueues them on the client as one batch, then flushes. Empty config
// fields leave the corresponding instrument setting untouched.
//
// When system.reset is set the batch opens with *WAI, *RST, *WAI so the
// instrument settles before the setup commands land.
func ApplySetup(client Client, cfg *config.Config) error {
	sys := scpi.NewSystem()
	if cfg.System.Reset {
		client.Enqueue(sys.Wait.String())
		client.Enqueue(sys.Reset.String())
		client.Enqueue(sys.Wait.String())
	}

	if cfg.Display != nil {
		enqueueDisplay(client, cfg.Display)
	}

	enqueueMeasure(client, &cfg.Measure)

	if cfg.Panel != nil {
		panel := scpi.NewPanel()
		switch {
		case cfg.Panel.Load != nil:
			client.Enqueue(panel.Load(*cfg.Panel.Load))
		case cfg.Panel.Save != nil:
			client.Enqueue(panel.Save(*cfg.Panel.Save))
		}
	}

	if cfg.Label != nil {
		enqueueLabel(client, cfg.Label, time.Now())
	}

	// Trigger source belongs to the run section but is still instrument
	// setup, so it rides in the same batch.
	if cfg.Run.TriggerSource != "" {
		src, err := ParseTriggerSource(cfg.Run.TriggerSource)
		if err != nil {
			return err
		}
		meas := scpi.NewMeasure()
		client.Enqueue(meas.TriggerSource.Set(src.String()))
	}

	return client.Flush()
}

func enqueueDisplay(client Client, d *config.DisplayConfig) {
	disp := scpi.NewDisplay()
	if d.Brightness != "" {
		client.Enqueue(disp.Brightness.Set(d.Brightness))
	}
	if d.View != "" {
		client.Enqueue(disp.View.Set(d.View))
	}
	if d.State != "" {
		client.Enqueue(disp.State.Set(d.State))
	}
	if d.Type != "" {
		client.Enqueue(disp.Type.Set(d.Type))
	}
}

func enqueueMeasure(client Client, m *config.MeasureConfig) {
	meas := scpi.NewMeasure()
	if m.VoltageRange != "" {
		client.Enqueue(meas.VoltageRange.Set(m.VoltageRange))
	}
	if m.VoltageRangeAuto != "" {
		client.Enqueue(meas.VoltageRangeAuto.Set(m.VoltageRangeAuto))
	}
	if m.Speed != "" {
		client.Enqueue(meas.Speed.Set(m.Speed))
	}
	if m.SampleCount > 0 {
		client.Enqueue(meas.SampleCount.Set(strconv.Itoa(m.SampleCount)))
	}
	if m.Format != "" {
		client.Enqueue(meas.Format.Set(m.Format))
	}
	if m.Continuous != "" {
		client.Enqueue(meas.Continuous.Set(m.Continuous))
	}
	if m.ImpedanceAuto != "" {
		client.Enqueue(meas.ImpedanceAuto.Set(m.ImpedanceAuto))
	}
}

func enqueueLabel(client Client, l *config.LabelConfig, now time.Time) {
	label := scpi.NewLabel()
	if l.State != "" {
		client.Enqueue(label.State.Set(l.State))
	}
	if l.Text != "" {
		for _, cmd := range label.SetText(l.Text, now) {
			client.Enqueue(cmd)
		}
	}
}
