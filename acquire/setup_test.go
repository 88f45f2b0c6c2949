package acquire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4x0/hioctl/config"
)

func TestApplySetup_FullConfig(t *testing.T) {
	load := 3
	cfg := &config.Config{
		System: config.SystemConfig{Reset: true},
		Display: &config.DisplayConfig{
			Brightness: "80",
			View:       "NUMeric",
		},
		Measure: config.MeasureConfig{
			VoltageRange: "100V",
			Speed:        "FAST",
			SampleCount:  1,
		},
		Panel: &config.PanelConfig{Load: &load},
		Run:   config.RunConfig{TriggerSource: "IMM"},
	}

	client := newFakeClient()
	require.NoError(t, ApplySetup(client, cfg))

	require.Len(t, client.flushed, 1)
	assert.Equal(t, []string{
		"*WAI",
		"*RST",
		"*WAI",
		":DISPlay:BACKlight 80",
		":DISPlay:VIEW NUMeric",
		":SENSe:VOLTage:DC:RANGe 100V",
		":SENSe:VOLTage:DC:NPLCycles FAST",
		":SAMPle:COUNt 1",
		"*RCL 3",
		":TRIGGER:SOURCE IMM",
	}, client.flushed[0])
}

func TestApplySetup_EmptyFieldsLeaveInstrumentUntouched(t *testing.T) {
	cfg := &config.Config{
		Run: config.RunConfig{TriggerSource: "IMM"},
	}

	client := newFakeClient()
	require.NoError(t, ApplySetup(client, cfg))

	require.Len(t, client.flushed, 1)
	assert.Equal(t, []string{":TRIGGER:SOURCE IMM"}, client.flushed[0])
}

func TestApplySetup_LabelCommands(t *testing.T) {
	cfg := &config.Config{
		Label: &config.LabelConfig{Text: "run1"},
	}

	client := newFakeClient()
	require.NoError(t, ApplySetup(client, cfg))

	cmds := client.flushedCommands()
	require.Len(t, cmds, 2)
	assert.Equal(t, ":SYSTem:LABel:STATe ON", cmds[0])
	assert.Equal(t, `:SYSTem:LABel "run1"`, cmds[1])
}

func TestApplySetup_BadTriggerSource(t *testing.T) {
	cfg := &config.Config{
		Run: config.RunConfig{TriggerSource: "bogus"},
	}

	client := newFakeClient()
	err := ApplySetup(client, cfg)
	require.Error(t, err)
	assert.Empty(t, client.flushed)
}

func TestApplySetup_FlushErrorPropagates(t *testing.T) {
	cfg := &config.Config{
		Run: config.RunConfig{TriggerSource: "EXT"},
	}

	client := newFakeClient()
	client.flushErr = errors.New("broken pipe")
	require.Error(t, ApplySetup(client, cfg))
}
