package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	valid := map[string]TimeOfDay{
		"00:00": 0,
		"09:05": 9*60 + 5,
		"23:59": 23*60 + 59,
	}
	for in, want := range valid {
		got, err := ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, in, got.String())
	}

	for _, in := range []string{"9:00", "24:00", "12:60", "ab:cd", "12-30", "", "12:300"} {
		_, err := ParseTimeOfDay(in)
		assert.ErrorIs(t, err, ErrInvalidTimeOfDay, in)
	}
}

func TestTimeOfDay_OrderMatchesClockOrder(t *testing.T) {
	assert.Less(t, int(MustParseTimeOfDay("09:59")), int(MustParseTimeOfDay("10:00")))
	assert.Less(t, int(MustParseTimeOfDay("00:01")), int(MustParseTimeOfDay("23:00")))
}

func TestTimeOfDay_JSON(t *testing.T) {
	var w TimeWindow
	require.NoError(t, json.Unmarshal([]byte(`{"start":"06:30","end":"08:00"}`), &w))
	assert.Equal(t, "06:30-08:00", w.String())

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"06:30","end":"08:00"}`, string(out))

	err = json.Unmarshal([]byte(`{"start":"6:30","end":"08:00"}`), &w)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	err = json.Unmarshal([]byte(`{"start":630,"end":"08:00"}`), &w)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestTimeWindow_Contains(t *testing.T) {
	w := TimeWindow{Start: MustParseTimeOfDay("09:00"), End: MustParseTimeOfDay("11:00")}

	assert.True(t, w.Contains(MustParseTimeOfDay("09:00")))
	assert.True(t, w.Contains(MustParseTimeOfDay("11:00")))
	assert.False(t, w.Contains(MustParseTimeOfDay("08:59")))
	assert.False(t, w.Contains(MustParseTimeOfDay("11:01")))
}
