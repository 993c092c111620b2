package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/tweetify/internal/annotate"
	"github.com/conneroisu/tweetify/internal/widget"
)

func TestFormatValue(t *testing.T) {
	var f formatValue
	for _, valid := range []string{"html", "json", "yaml"} {
		require.NoError(t, f.Set(valid))
		assert.Equal(t, valid, f.String())
	}
	assert.Error(t, f.Set("table"))
	assert.Equal(t, "yaml", f.String())
	assert.Equal(t, "format", f.Type())
}

func TestModeValue(t *testing.T) {
	m := modeValue(widget.ModeDefault)
	require.NoError(t, m.Set("Medium"))
	assert.Equal(t, widget.ModeMedium, widget.Mode(m))
	assert.Equal(t, "medium", m.String())
	assert.Error(t, m.Set("huge"))
	assert.Equal(t, "mode", m.Type())
}

func TestOvershootValue(t *testing.T) {
	var o overshootValue
	assert.Equal(t, "strict", o.String())
	require.NoError(t, o.Set("clamp"))
	assert.Equal(t, annotate.OvershootClamp, annotate.OvershootPolicy(o))
	assert.Error(t, o.Set("wrap"))
	assert.Equal(t, "policy", o.Type())
}

func TestTimeValue(t *testing.T) {
	fallback := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	var v timeValue
	assert.Equal(t, "", v.String())
	assert.Equal(t, fallback, v.Or(fallback))

	require.NoError(t, v.Set("2024-03-10T12:00:00Z"))
	assert.Equal(t, "2024-03-10T12:00:00Z", v.String())
	assert.True(t, v.Or(fallback).Equal(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)))

	require.NoError(t, v.Set("1710072000"))
	assert.Equal(t, int64(1710072000), v.Or(fallback).Unix())

	assert.Error(t, v.Set("0"))
	assert.Error(t, v.Set("soon"))

	require.NoError(t, v.Set(""))
	assert.Equal(t, fallback, v.Or(fallback))
	assert.Equal(t, "time", v.Type())
}
