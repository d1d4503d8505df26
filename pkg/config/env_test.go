package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEnvironment(t *testing.T) {
	assert.Equal(t, EnvDevelopment, NormalizeEnvironment(""))
	assert.Equal(t, EnvDevelopment, NormalizeEnvironment("  "))
	assert.Equal(t, EnvProduction, NormalizeEnvironment(" Production "))
	assert.Equal(t, "qa", NormalizeEnvironment("QA"))
}

func TestIsProductionLike(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"PRODUCTION", true},
		{"staging", true},
		{" Staging", true},
		{"development", false},
		{"", false},
		{"qa", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProductionLike(tt.env))
		})
	}
}
