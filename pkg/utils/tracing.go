package utils

import (
	"strconv"
)

const DefaultServiceName = "multiverse-waitlist"

func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", DefaultServiceName)
}

// TraceSampleRatio reads OTEL_TRACES_SAMPLER_ARG as a ratio in [0, 1]. Anything else samples everything.
func TraceSampleRatio() float64 {
	ratio, err := strconv.ParseFloat(GetEnvTrimmed("OTEL_TRACES_SAMPLER_ARG"), 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1
	}
	return ratio
}
