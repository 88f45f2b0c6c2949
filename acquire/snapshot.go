package acquire

import (
	"github.com/4x0/hioctl/scpi"
)

// Setting is one key/value pair of the instrument's current configuration.
// The key is the query string that produced the value.
type Setting struct {
	Key   string
	Value string
}

// Snapshot reads the instrument's current setup and returns it as ordered
// key/value pairs. The result feeds the settings-dump header of the CSV
// output and the diag command.
func Snapshot(client Client) ([]Setting, error) {
	sys := scpi.NewSystem()
	disp := scpi.NewDisplay()
	meas := scpi.NewMeasure()

	queries := []string{
		sys.DeviceID.Get(),
		sys.InstalledOptions.Get(),
		disp.Brightness.Get(),
		disp.Type.Get(),
		disp.State.Get(),
		disp.View.Get(),
		meas.SampleCount.Get(),
		meas.VoltageRange.Get(),
		meas.VoltageRangeAuto.Get(),
		meas.DCVoltage.Get(),
		meas.Format.Get(),
		meas.ApertureControl.Get(),
		meas.ApertureTime.Get(),
		meas.ImpedanceAuto.Get(),
		meas.VoltageDigits.Get(),
		meas.TriggerSource.Get(),
		meas.TriggerDelay.Get(),
		meas.TriggerDelayAuto.Get(),
	}

	settings := make([]Setting, 0, len(queries))
	for _, q := range queries {
		v, err := client.Query(q)
		if err != nil {
			return settings, err
		}
		settings = append(settings, Setting{Key: q, Value: v})
	}

	return settings, nil
}
