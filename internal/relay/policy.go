package relay

import (
	"wikirelay/internal/config"
	"wikirelay/internal/event"
)

// Policy is the exclusion policy applied before any formatting work.
// It is an immutable snapshot taken at startup; concurrent pipeline
// invocations share it without locking.
type Policy struct {
	disabledNamespaces map[int]struct{}
	ignoreBots         bool
}

func NewPolicy(cfg config.RelayConfig) Policy {
	disabled := make(map[int]struct{}, len(cfg.DisabledNamespaces))
	for _, ns := range cfg.DisabledNamespaces {
		disabled[ns] = struct{}{}
	}
	return Policy{
		disabledNamespaces: disabled,
		ignoreBots:         cfg.IgnoreBots,
	}
}

// Allows reports whether the event qualifies for notification. Pure
// predicate, no side effects.
func (p Policy) Allows(ev *event.ChangeEvent) bool {
	if _, disabled := p.disabledNamespaces[ev.Namespace]; disabled {
		return false
	}
	if p.ignoreBots && ev.Bot {
		return false
	}
	return true
}
