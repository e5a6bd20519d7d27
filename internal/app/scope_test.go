package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/optbind/internal/config"
	"github.com/vk/optbind/internal/evaluator"
)

func TestBuildScope_Env(t *testing.T) {
	t.Setenv("OPTBIND_SCOPE_TEST", "hello")

	scope, closer := buildScope(config.NewModel())
	t.Cleanup(func() { require.NoError(t, closer()) })

	out, err := evaluator.NewHCL(scope).Evaluate(context.Background(), "env.OPTBIND_SCOPE_TEST", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestBuildScope_DataShadowsEnv(t *testing.T) {
	model := config.NewModel()
	model.Data["env"] = &config.Data{Name: "env", Value: []any{"a"}}

	scope, closer := buildScope(model)
	t.Cleanup(func() { require.NoError(t, closer()) })

	assert.Equal(t, []any{"a"}, scope.Variables["env"])
}
