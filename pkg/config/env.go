package config

import "strings"

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// NormalizeEnvironment lowercases and trims an environment name. An empty
// value means development.
func NormalizeEnvironment(env string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		return EnvDevelopment
	}
	return env
}

// IsProductionLike reports whether env requires production grade settings.
func IsProductionLike(env string) bool {
	switch NormalizeEnvironment(env) {
	case EnvStaging, EnvProduction:
		return true
	}
	return false
}
