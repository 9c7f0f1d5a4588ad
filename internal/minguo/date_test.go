package minguo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIDZeroPadsMonth(t *testing.T) {
	assert.Equal(t, "A001_11408", RecordID("A001", 114, 8))
	assert.Equal(t, "A001_11412", RecordID("A001", 114, 12))
	assert.Equal(t, "B12_10901", RecordID("B12", 109, 1))
}

func TestRecordIDDeterministic(t *testing.T) {
	first := RecordID("A001", 114, 8)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RecordID("A001", 114, 8))
	}
}

func TestParseWire(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  Date
		ok    bool
	}{
		{"valid date", 1140815, Date{114, 8, 15}, true},
		{"first of year", 1140101, Date{114, 1, 1}, true},
		{"end of year", 1141231, Date{114, 12, 31}, true},
		{"six digits", 140815, Date{}, false},
		{"eight digits", 11408155, Date{}, false},
		{"zero", 0, Date{}, false},
		{"month thirteen", 1141315, Date{}, false},
		{"day zero", 1140800, Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseWire(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDisplayRoundTrip(t *testing.T) {
	d, ok := ParseWire(1140805)
	require.True(t, ok)
	assert.Equal(t, "114-08-05", d.Display())

	parsed, ok := ParseDisplay("114-08-05")
	require.True(t, ok)
	assert.Equal(t, 1140805, parsed.Wire())
}

func TestParseDisplayRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "2025-08-05", "114-8-5", "114/08/05", "abc", "114-13-01"} {
		_, ok := ParseDisplay(s)
		assert.False(t, ok, "expected %q to be rejected", s)
	}
}

func TestFormatWireFallsBackOnMalformed(t *testing.T) {
	assert.Equal(t, "114-08-05", FormatWire(1140805))
	assert.Equal(t, "99", FormatWire(99))
}

func TestPrevMonth(t *testing.T) {
	y, m := PrevMonth(114, 8)
	assert.Equal(t, 114, y)
	assert.Equal(t, 7, m)

	y, m = PrevMonth(114, 1)
	assert.Equal(t, 113, y)
	assert.Equal(t, 12, m)
}

func TestYearMonth(t *testing.T) {
	y, m := YearMonth(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 114, y)
	assert.Equal(t, 8, m)
}

func TestValidYearMonth(t *testing.T) {
	assert.True(t, ValidYearMonth(114, 8))
	assert.False(t, ValidYearMonth(114, 0))
	assert.False(t, ValidYearMonth(114, 13))
	assert.False(t, ValidYearMonth(99, 8))
	assert.False(t, ValidYearMonth(1000, 8))
}
