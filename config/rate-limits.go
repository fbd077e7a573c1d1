package config

// Rate limit configuration
type RateLimitConfig struct {
	Rate  int // Sustained requests per minute
	Burst int // Short burst allowance on top of the sustained rate
}

// DefaultAPIRateLimit applies to every v1 route
var DefaultAPIRateLimit = RateLimitConfig{
	Rate:  10000,
	Burst: 1500,
}

// GuessRateLimit applies to the judge-backed write routes, which each cost an
// external scoring round trip
var GuessRateLimit = RateLimitConfig{
	Rate:  60,
	Burst: 20,
}
