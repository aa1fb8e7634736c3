package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("cricket:%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeyUpcomingTournament() string {
	return kb.BuildKey(KeyUpcomingTournament)
}

func (kb *KeyBuilder) KeyUserRole(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyUserRole, userID))
}

func (kb *KeyBuilder) KeySubmission(scope, userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySubmission, scope, userID))
}

func (kb *KeyBuilder) KeyCaptainName(teamID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCaptainName, teamID))
}
