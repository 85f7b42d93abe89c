package upstream

import (
	"sort"
	"strings"

	"github.com/stratus-ventures/stratus-site/internal/pkg/env"
)

// ProductConfig pairs an upstream endpoint with its credential. Derived
// from the configuration key space on every call, never cached, so config
// changes between deployments are picked up on the next poll cycle.
type ProductConfig struct {
	Name   string
	APIURL string
	APIKey string
}

const (
	urlSuffix = "_API_URL"
	keySuffix = "_API_KEY"

	// API keys shorter than this are treated as placeholders
	minAPIKeyLength = 10

	credentialHeader = "clovis-api-key"
	fixedOrigin      = "https://stratus-ventures.org"
)

// GetAllProductConfigs scans the configuration space for <NAME>_API_URL /
// <NAME>_API_KEY pairs and returns one config per complete, validated
// pair. Incomplete or malformed pairs are skipped silently; the result is
// empty (never an error) when nothing matches.
func GetAllProductConfigs() []ProductConfig {
	return ConfigsFrom(env.All())
}

// ConfigsFrom is the testable core of GetAllProductConfigs
func ConfigsFrom(vars map[string]string) []ProductConfig {
	names := make(map[string]struct{})
	for key := range vars {
		upper := strings.ToUpper(key)
		if strings.HasSuffix(upper, urlSuffix) {
			names[strings.TrimSuffix(upper, urlSuffix)] = struct{}{}
		}
	}

	configs := make([]ProductConfig, 0, len(names))
	for name := range names {
		apiURL := vars[name+urlSuffix]
		apiKey := vars[name+keySuffix]

		if apiURL == "" || apiKey == "" {
			continue
		}
		if !strings.HasPrefix(apiURL, "http") || len(apiKey) < minAPIKeyLength {
			continue
		}

		configs = append(configs, ProductConfig{
			Name:   strings.ToLower(name),
			APIURL: strings.TrimSuffix(apiURL, "/"),
			APIKey: apiKey,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs
}

// APIHeaders returns the fixed header set used by every upstream call
func APIHeaders(apiKey string) map[string]string {
	return map[string]string{
		credentialHeader: apiKey,
		"Origin":         fixedOrigin,
		"Content-Type":   "application/json",
	}
}
