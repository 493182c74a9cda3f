package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvBool(t *testing.T) {
	t.Setenv("WAITLIST_FLAG", "")
	assert.True(t, GetEnvBool("WAITLIST_FLAG", true))

	t.Setenv("WAITLIST_FLAG", " false ")
	assert.False(t, GetEnvBool("WAITLIST_FLAG", true))

	t.Setenv("WAITLIST_FLAG", "maybe")
	assert.False(t, GetEnvBool("WAITLIST_FLAG", false))
}

func TestGetEnvNonNegativeInt(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	assert.Equal(t, 3, GetEnvNonNegativeInt("REDIS_DB", 0))

	t.Setenv("REDIS_DB", "-1")
	assert.Equal(t, 0, GetEnvNonNegativeInt("REDIS_DB", 0))

	t.Setenv("REDIS_DB", "two")
	assert.Equal(t, 0, GetEnvNonNegativeInt("REDIS_DB", 0))
}

func TestOTelServiceName_DefaultsToWaitlist(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	assert.Equal(t, DefaultServiceName, OTelServiceName())

	t.Setenv("OTEL_SERVICE_NAME", "waitlist-canary")
	assert.Equal(t, "waitlist-canary", OTelServiceName())
}

func TestTraceSampleRatio(t *testing.T) {
	cases := map[string]float64{
		"":     1,
		"0.25": 0.25,
		"0":    0,
		"1.5":  1,
		"-0.1": 1,
		"half": 1,
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER_ARG", raw)
			assert.Equal(t, want, TraceSampleRatio())
		})
	}
}
