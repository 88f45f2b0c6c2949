package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4x0/hioctl/script"
)

func TestPersistSession(t *testing.T) {
	sess := script.NewSession(script.Restricted, time.Minute)
	sess.SetMetadata("dut", "board-17")
	sess.SetMetadata("range", "100V")
	sess.AppendReading(1.5)
	sess.AppendReading(-0.25)

	path := filepath.Join(t.TempDir(), "session.csv")
	got, err := PersistSession(sess, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"dut=board-17\nrange=100V\n+1.50000E+00\n-2.50000E-01\n",
		string(data))
}

func TestPersistSession_DefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	sess := script.NewSession(script.Restricted, time.Minute)
	sess.AppendReading(1)

	path, err := PersistSession(sess, "")
	require.NoError(t, err)
	assert.Contains(t, path, "_HIOKI.csv")

	_, err = os.Stat(path)
	require.NoError(t, err)
}
