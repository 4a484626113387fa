package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		code      string
		wantName  string
		wantStart time.Time
		wantErr   bool
	}{
		{code: "1M", wantName: "1M", wantStart: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)},
		{code: "3m", wantName: "3M", wantStart: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		{code: "6M", wantName: "6M", wantStart: time.Date(2023, 12, 15, 12, 0, 0, 0, time.UTC)},
		{code: "1Y", wantName: "1Y", wantStart: time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)},
		{code: "ytd", wantName: "YTD", wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{code: "ALL", wantName: "ALL"},
		{code: "", wantName: "ALL"},
		{code: "2W", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			p, err := ParsePeriod(tt.code, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantStart, p.Start)
			if tt.wantName != "ALL" {
				assert.Equal(t, now, p.End)
			}
		})
	}
}

func TestPeriodContains(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	p := Period{Name: "JAN", Start: start, End: end}

	assert.True(t, p.Contains(start))
	assert.True(t, p.Contains(end))
	assert.True(t, p.Contains(start.AddDate(0, 0, 10)))
	assert.False(t, p.Contains(start.Add(-time.Second)))
	assert.False(t, p.Contains(end.Add(time.Second)))

	assert.True(t, AllTime.Contains(time.Time{}))
	assert.True(t, AllTime.Contains(end))
}

func TestPeriodWeeks(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2.0, Period{Start: start, End: start.AddDate(0, 0, 14)}.Weeks())
	assert.Zero(t, AllTime.Weeks())
	assert.Zero(t, Period{Start: start}.Weeks())
	assert.Zero(t, Period{Start: start, End: start}.Weeks())
}
