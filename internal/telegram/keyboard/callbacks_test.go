package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	data, err := ParseCallback(EncodeCallback(DownloadPrefix, "pdf"))
	require.NoError(t, err)
	assert.Equal(t, &CallbackData{Action: DownloadPrefix, Value: "pdf"}, data)

	data, err = ParseCallback("action:a:b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", data.Value)

	for _, bad := range []string{"", "nocolon", ":x", "x:"} {
		_, err := ParseCallback(bad)
		assert.Error(t, err, bad)
	}
}
