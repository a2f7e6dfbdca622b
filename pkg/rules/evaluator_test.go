package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateFilterExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid comparison",
			expr:      `event.namespace == 0`,
			wantError: false,
		},
		{
			name:      "valid boolean combination",
			expr:      `event.namespace == 0 && !event.bot`,
			wantError: false,
		},
		{
			name:      "valid string match",
			expr:      `event.title.startsWith("File:")`,
			wantError: false,
		},
		{
			name:      "non-bool expression rejected",
			expr:      `event.namespace`,
			wantError: true,
		},
		{
			name:      "syntax error rejected",
			expr:      `not valid cel!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable rejected",
			expr:      `payload.status == "active"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateFilterExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluateFilter(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	eventVars := map[string]interface{}{
		"namespace": 0,
		"title":     "Main Page",
		"user":      "Alice",
		"bot":       false,
		"minor":     true,
	}

	tests := []struct {
		name     string
		expr     string
		expected bool
	}{
		{name: "namespace match", expr: `event.namespace == 0`, expected: true},
		{name: "namespace mismatch", expr: `event.namespace == 4`, expected: false},
		{name: "bot check", expr: `!event.bot`, expected: true},
		{name: "combined", expr: `event.namespace == 0 && event.user == "Alice"`, expected: true},
		{name: "minor flag", expr: `!(has(event.minor) && event.minor)`, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eval.EvaluateFilter(context.Background(), tt.expr, eventVars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateFilter_MissingKeyIsError(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateFilter(context.Background(), `event.no_such_field == "x"`, map[string]interface{}{})
	assert.Error(t, err)
}
