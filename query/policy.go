package query

import "time"

// Policy configures freshness and retention of cache entries.
type Policy struct {
	// StaleTime is how long fetched data counts as fresh. Reads of fresh
	// data are served from the cache; stale data is shown and refetched.
	// Zero means data is stale as soon as it arrives.
	StaleTime time.Duration `mapstructure:"stale_time"`

	// MaxStaleTime caps per-query StaleTime overrides. Zero means no cap.
	MaxStaleTime time.Duration `mapstructure:"max_stale_time"`

	// RetentionTime is how long an entry with no observers is kept before
	// eviction.
	RetentionTime time.Duration `mapstructure:"retention_time"`
}

// DefaultPolicy returns the default policy.
// StaleTime: 0, MaxStaleTime: 1 hour, RetentionTime: 5 minutes
func DefaultPolicy() Policy {
	return Policy{
		StaleTime:     0,
		MaxStaleTime:  time.Hour,
		RetentionTime: 5 * time.Minute,
	}
}

// EffectiveStaleTime returns the stale time to use, applying the default
// and clamping overrides.
func (p Policy) EffectiveStaleTime(override time.Duration) time.Duration {
	st := override
	if st <= 0 {
		st = p.StaleTime
	}
	if p.MaxStaleTime > 0 && st > p.MaxStaleTime {
		st = p.MaxStaleTime
	}
	return st
}

// EffectiveRetention returns RetentionTime, or the default when unset.
func (p Policy) EffectiveRetention() time.Duration {
	if p.RetentionTime <= 0 {
		return DefaultPolicy().RetentionTime
	}
	return p.RetentionTime
}

// isFresh reports whether data updated at updatedAt is still fresh.
func (p Policy) isFresh(updatedAt time.Time, override time.Duration) bool {
	st := p.EffectiveStaleTime(override)
	if st <= 0 || updatedAt.IsZero() {
		return false
	}
	return time.Since(updatedAt) < st
}
