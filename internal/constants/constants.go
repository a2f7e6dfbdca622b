package constants

import "time"

const (
	DefaultInputTopic = "recentchange_events"
	DefaultDLQTopic   = "recentchange_events_dlq"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultCacheTTLSeconds = 3600
)
