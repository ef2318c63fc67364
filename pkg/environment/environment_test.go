package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/envmanager/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want environment.Environment
	}{
		{"development", environment.Development},
		{"dev", environment.Development},
		{" Staging ", environment.Staging},
		{"stage", environment.Staging},
		{"PRODUCTION", environment.Production},
		{"prod", environment.Production},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := environment.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := environment.Parse("qa")
	assert.ErrorIs(t, err, environment.ErrUnknownEnvironment)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(environment.Variable, "prod")
	assert.Equal(t, environment.Production, environment.FromEnv())
	assert.True(t, environment.FromEnv().IsProduction())

	t.Setenv(environment.Variable, "unknown")
	assert.Equal(t, environment.Development, environment.FromEnv())

	t.Setenv(environment.Variable, "")
	assert.True(t, environment.FromEnv().IsDevelopment())
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, environment.Staging.IsStaging())
	assert.False(t, environment.Staging.IsProduction())
	assert.Equal(t, "staging", environment.Staging.String())
}
