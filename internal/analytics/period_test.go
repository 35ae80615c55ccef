package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing-analytics/internal/model"
)

func TestResolvePeriod(t *testing.T) {
	p, err := ResolvePeriod("2024-02")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.End)
	assert.Equal(t, "2024-02", p.Token())
	assert.True(t, p.Contains(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(p.End))
}

func TestResolvePeriodDecemberRollsOverYear(t *testing.T) {
	p, err := ResolvePeriod("2023-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.End)
}

func TestResolvePeriodRejectsMalformedTokens(t *testing.T) {
	for _, token := range []string{"", "2024-2", "2024-13", "24-01", "2024/01", "abcd-ef", "2024-01-01"} {
		_, err := ResolvePeriod(token)
		assert.ErrorIs(t, err, model.ErrInvalidPeriod, "token %q", token)
	}
}

func TestPeriodWindows(t *testing.T) {
	p, err := ResolvePeriod("2024-05")
	require.NoError(t, err)

	trailing := p.Trailing(3)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), trailing.Start)
	assert.Equal(t, p.Start, trailing.End)

	window := p.Window(6)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, p.End, window.End)

	assert.Equal(t, "2024-03", p.Shift(-2).Token())

	last := p.Last(6)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), last.Start)
	assert.Equal(t, p.End, last.End)
	assert.Equal(t, p, p.Last(0))
}
