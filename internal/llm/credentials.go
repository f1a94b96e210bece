package llm

import (
	"sync"

	"github.com/aaronromeo/fitcoach/internal/llm/provider"
)

const apiKeyVar = "OPENAI_API_KEY"

// KeyLookup returns the provider API key, or "" when none is configured.
type KeyLookup func() (string, error)

// ProviderFactory builds a provider bound to apiKey.
type ProviderFactory func(apiKey string) (provider.Provider, error)

// Credentials lazily builds the provider client on first use and hands the
// same instance to every later caller. A failed lookup is not remembered, so
// configuring the key and calling again succeeds.
type Credentials struct {
	lookup  KeyLookup
	factory ProviderFactory

	mu sync.Mutex
	p  provider.Provider
}

func NewCredentials(lookup KeyLookup, factory ProviderFactory) *Credentials {
	return &Credentials{lookup: lookup, factory: factory}
}

// Provider returns the memoized provider, constructing it if needed.
// Failures are configuration errors.
func (c *Credentials) Provider() (provider.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.p != nil {
		return c.p, nil
	}
	key, err := c.lookup()
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: "reading " + apiKeyVar + " failed", Err: err}
	}
	if key == "" {
		return nil, &Error{
			Kind:    KindConfiguration,
			Message: apiKeyVar + " is not configured. Set " + apiKeyVar + " in the environment or in .env",
		}
	}
	p, err := c.factory(key)
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: "building provider client failed", Err: err}
	}
	c.p = p
	return p, nil
}
