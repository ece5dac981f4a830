package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestNilSchemaAcceptsAnything(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(nil))
	assert.NoError(t, s.Validate(map[string]any{"anything": 1}))
}

func TestScalarKinds(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		value  any
		ok     bool
	}{
		{"string ok", &Schema{Kind: String}, "hi", true},
		{"string wrong type", &Schema{Kind: String}, 42, false},
		{"bool ok", &Schema{Kind: Bool}, true, true},
		{"bool wrong type", &Schema{Kind: Bool}, "true", false},
		{"number float", &Schema{Kind: Number}, 1.5, true},
		{"number int", &Schema{Kind: Number}, 7, true},
		{"number wrong type", &Schema{Kind: Number}, "7", false},
		{"any accepts object", &Schema{Kind: Any}, map[string]any{}, true},
		{"min ok", &Schema{Kind: Number, Min: floatPtr(0)}, 3, true},
		{"min violated", &Schema{Kind: Number, Min: floatPtr(0)}, -1, false},
		{"max violated", &Schema{Kind: Number, Max: floatPtr(10)}, 11, false},
		{"enum ok", &Schema{Kind: String, Enum: []string{"left", "right"}}, "left", true},
		{"enum violated", &Schema{Kind: String, Enum: []string{"left", "right"}}, "up", false},
		{"missing required", &Schema{Kind: String}, nil, false},
		{"missing optional", &Schema{Kind: String, Optional: true}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var serr *Error
				require.ErrorAs(t, err, &serr)
			}
		})
	}
}

func TestObjectFields(t *testing.T) {
	s := &Schema{
		Kind: Object,
		Fields: map[string]*Schema{
			"title":  {Kind: String},
			"accent": {Kind: String, Optional: true},
			"count":  {Kind: Number, Min: floatPtr(1)},
		},
	}

	require.NoError(t, s.Validate(map[string]any{"title": "hi", "count": 3}))

	err := s.Validate(map[string]any{"count": 3})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "title", serr.Path)

	err = s.Validate(map[string]any{"title": "hi", "count": 0})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "count", serr.Path)

	// Unknown keys pass through; only declared fields are checked.
	assert.NoError(t, s.Validate(map[string]any{"title": "hi", "count": 1, "extra": true}))
}

func TestNestedPaths(t *testing.T) {
	s := &Schema{
		Kind: Object,
		Fields: map[string]*Schema{
			"slides": {
				Kind: Array,
				Elem: &Schema{
					Kind:   Object,
					Fields: map[string]*Schema{"heading": {Kind: String}},
				},
			},
		},
	}

	err := s.Validate(map[string]any{
		"slides": []any{
			map[string]any{"heading": "one"},
			map[string]any{"heading": 2},
		},
	})
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "slides[1].heading", serr.Path)
	assert.Contains(t, err.Error(), "slides[1].heading")
}
