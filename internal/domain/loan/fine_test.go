package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateFine(t *testing.T) {
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"before due", due.Add(-time.Hour), 0},
		{"exactly due", due, 0},
		{"less than a day late", due.Add(23*time.Hour + 59*time.Minute), 0},
		{"one day late", due.Add(24 * time.Hour), 100},
		{"fraction truncates", due.Add(2*24*time.Hour + 23*time.Hour), 200},
		{"fourteen days late", due.Add(14 * 24 * time.Hour), 1400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateFine(due, tc.now))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "14.00", FormatAmount(1400))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "-1.50", FormatAmount(-150))
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecord("M1", "1111111111", now)

	assert.Equal(t, now.AddDate(0, 0, 14), r.DueDate)
	assert.True(t, r.IsOpen())
	assert.False(t, r.IsOverdue(now))
	assert.True(t, r.IsOverdue(now.AddDate(0, 0, 15)))

	returned := now.AddDate(0, 0, 20)
	r.ReturnDate = &returned
	assert.False(t, r.IsOpen())
	assert.False(t, r.IsOverdue(returned))
}
