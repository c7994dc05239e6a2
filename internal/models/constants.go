package models

const (
	// DefaultPageFrom and DefaultPageSize apply when a listing request
	// omits the paging parameters.
	DefaultPageFrom = 0
	DefaultPageSize = 20

	// ItemsCacheTTL is the redis TTL for cached item records, in seconds.
	ItemsCacheTTL = 30 * 60

	// RateLimitRPS and RateLimitBurst are the per-caller HTTP defaults.
	RateLimitRPS   = 10
	RateLimitBurst = 20
)
