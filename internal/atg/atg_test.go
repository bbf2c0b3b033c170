package atg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRandomDurationWithinBounds(t *testing.T) {
	min := 10 * time.Second
	max := 20 * time.Second
	for i := 0; i < 100; i++ {
		d := randomDuration(min, max)
		assert.GreaterOrEqual(t, d, min)
		assert.Less(t, d, max)
	}
}

func TestRandomDurationCollapsedRange(t *testing.T) {
	d := randomDuration(5*time.Second, 5*time.Second)
	assert.Equal(t, 5*time.Second, d)

	d = randomDuration(10*time.Second, 5*time.Second)
	assert.Equal(t, 10*time.Second, d)
}

func TestRandomTagPicksFromConfiguredList(t *testing.T) {
	tags := []string{"AABBCCDD"}
	assert.Equal(t, "AABBCCDD", randomTag(tags))
}

func TestRandomTagEmptyWhenNoneConfigured(t *testing.T) {
	assert.Empty(t, randomTag(nil))
	assert.Empty(t, randomTag([]string{}))
}

func TestCryptoFloat64StaysInUnitInterval(t *testing.T) {
	for i := 0; i < 100; i++ {
		r := cryptoFloat64()
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 1.0)
	}
}

func TestATGStopRequestedDefaultsTrueBeforeStart(t *testing.T) {
	a := New(nil, Params{}, nil)
	assert.True(t, a.stopRequested())
}
