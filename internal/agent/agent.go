// Package agent resolves the identity of the calling agent process.
package agent

import (
	"os"

	"github.com/google/uuid"
)

// EnvAgentID is the environment variable consulted first for the agent
// identity. Orchestrators set it so every invocation they spawn reports
// the same id.
const EnvAgentID = "FOREMAN_AGENT_ID"

// ResolveID returns the calling agent's identifier: the environment
// variable if set, then the configured id, then a freshly generated UUID.
// A generated id is not persisted; an agent that wants a stable identity
// across invocations must set one of the explicit sources.
func ResolveID(configured string) string {
	if id := os.Getenv(EnvAgentID); id != "" {
		return id
	}
	if configured != "" {
		return configured
	}
	return uuid.NewString()
}
