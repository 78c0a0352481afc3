package mdsync

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'mdsync'.
func tracer() tracing.Trace {
	return tracing.Select("mdsync")
}
