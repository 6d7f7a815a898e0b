package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

import "strings"

// UserAgentProvider is an interface that defines a method for retrieving a User-Agent string.
type UserAgentProvider interface {
	// GetUserAgent returns the User-Agent string to send to the given host.
	GetUserAgent(host string) string
}

// HostUserAgentProvider returns a per-host User-Agent with a fallback for every other host.
// The Web API accepts a browser agent while the internal client endpoints expect a desktop client agent.
type HostUserAgentProvider struct {
	// fallback is returned for hosts without an override.
	fallback string
	// overrides maps a lower-cased host (without port) to its User-Agent.
	overrides map[string]string
}

// NewSimpleUserAgentProvider creates a provider that returns the same User-Agent for every host.
func NewSimpleUserAgentProvider(userAgent string) UserAgentProvider {
	return NewHostUserAgentProvider(userAgent, nil)
}

// NewHostUserAgentProvider creates a provider with per-host overrides.
func NewHostUserAgentProvider(fallback string, overrides map[string]string) UserAgentProvider {
	normalized := make(map[string]string, len(overrides))
	for host, userAgent := range overrides {
		normalized[strings.ToLower(host)] = userAgent
	}

	return &HostUserAgentProvider{
		fallback:  fallback,
		overrides: normalized,
	}
}

// GetUserAgent returns the User-Agent string for host.
func (p *HostUserAgentProvider) GetUserAgent(host string) string {
	host = strings.ToLower(host)
	if index := strings.LastIndex(host, ":"); index != -1 {
		host = host[:index]
	}

	if userAgent, ok := p.overrides[host]; ok {
		return userAgent
	}

	return p.fallback
}
