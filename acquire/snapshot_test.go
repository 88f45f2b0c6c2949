package acquire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4x0/hioctl/transport"
)

func TestSnapshot_OrderedPairs(t *testing.T) {
	client := newFakeClient()
	client.respond = func(cmd string) (string, error) {
		switch cmd {
		case "*IDN?":
			return "HIOKI,DM7276,123456789,1.00", nil
		case ":SENSe:VOLTage:DC:RANGe?":
			return "+1.00000E+02", nil
		default:
			return "1", nil
		}
	}

	settings, err := Snapshot(client)
	require.NoError(t, err)
	require.NotEmpty(t, settings)

	assert.Equal(t, "*IDN?", settings[0].Key)
	assert.Equal(t, "HIOKI,DM7276,123456789,1.00", settings[0].Value)

	found := false
	for _, s := range settings {
		if s.Key == ":SENSe:VOLTage:DC:RANGe?" {
			found = true
			assert.Equal(t, "+1.00000E+02", s.Value)
		}
	}
	assert.True(t, found)

	// One query per setting, same order.
	require.Len(t, client.queries, len(settings))
	for i, s := range settings {
		assert.Equal(t, s.Key, client.queries[i])
	}
}

func TestSnapshot_StopsOnFirstError(t *testing.T) {
	client := newFakeClient()
	n := 0
	client.respond = func(cmd string) (string, error) {
		n++
		if n > 2 {
			return "", fmt.Errorf("%w: connection reset", transport.ErrConnection)
		}

		return "1", nil
	}

	settings, err := Snapshot(client)
	require.ErrorIs(t, err, transport.ErrConnection)
	assert.Len(t, settings, 2)
}
