package inference

import (
	"fmt"
	"strings"

	"github.com/jmehdipour/contact-gateway/internal/config"
)

// BackendsFromConfig builds one backend per enabled provider, in config
// order. Providers without a base URL are skipped.
func BackendsFromConfig(providers []config.ProviderConfig) ([]Backend, error) {
	var out []Backend
	for _, pc := range providers {
		if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
			continue
		}
		baseURL := strings.TrimRight(pc.BaseURL, "/")

		switch pc.Kind {
		case config.KindHuggingFace, "":
			out = append(out, NewHFBackend(pc.Name, baseURL, pc.Token,
				pc.TimeoutMs, pc.Breaker.FailThreshold, pc.Breaker.OpenForMs))
		case config.KindOpenAI:
			out = append(out, NewOpenAIBackend(pc.Name, baseURL, pc.Model, pc.Token,
				pc.TimeoutMs, pc.Breaker.FailThreshold, pc.Breaker.OpenForMs))
		default:
			return nil, fmt.Errorf("provider %q: unknown kind %q", pc.Name, pc.Kind)
		}
	}
	return out, nil
}
