package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtIsSortableAndRoundTrips(t *testing.T) {
	ts := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	a := At(ts)
	b := At(ts)
	c := At(ts.Add(time.Second))

	assert.Len(t, a, 26)
	assert.Less(t, a, b, "monotonic within the same millisecond")
	assert.Less(t, b, c)

	got, err := Time(a)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
}

func TestTimeRejectsGarbage(t *testing.T) {
	_, err := Time("not-a-ulid")
	assert.Error(t, err)
	assert.NotEmpty(t, New())
}
