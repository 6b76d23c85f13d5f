package ratelimit

import "time"

// EndpointConfig is the limit for one endpoint.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends in "/"
	Method string
	Rate   float64 // requests per second; 0 means unlimited
	Burst  int
	// Shared makes every path under a prefix draw from one bucket.
	Shared bool
}

func (ec *EndpointConfig) key(path string) string {
	if ec.Shared && ec.Path != "" {
		return ec.Path
	}
	return path
}

// DefaultConfig returns the limits used by the server for a per-client analysis rate and
// burst.
func DefaultConfig(analyzeRate float64, analyzeBurst int) *Config {
	return &Config{
		Enabled:         analyzeRate > 0,
		DefaultRate:     analyzeRate * 4,
		DefaultBurst:    analyzeBurst * 4,
		IdleTTL:         time.Hour,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(analyzeRate, analyzeBurst),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits.
func DefaultEndpointConfigs(analyzeRate float64, analyzeBurst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", Rate: analyzeRate, Burst: analyzeBurst},
		{Path: "/score", Method: "POST", Rate: analyzeRate * 4, Burst: analyzeBurst * 2},
		{Path: "/refresh", Method: "POST", Rate: 0.1, Burst: 1},
		{Path: "/catalog/", Method: "GET", Rate: analyzeRate * 4, Burst: analyzeBurst * 4, Shared: true},
	}
}
