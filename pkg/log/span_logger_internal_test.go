package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

// Test_kvToAttributes verifies conversion of key-value pairs to span
// attributes, including odd-length input and non-string keys.
func Test_kvToAttributes(t *testing.T) {
	tests := []struct {
		name           string
		keysAndValues  []any
		expectedOutput []attribute.KeyValue
	}{
		{
			name:           "empty input",
			keysAndValues:  []any{},
			expectedOutput: []attribute.KeyValue{},
		},
		{
			name:          "even number of elements",
			keysAndValues: []any{"key1", "value1", "key2", 42, "key3", true},
			expectedOutput: []attribute.KeyValue{
				attribute.String("key1", "value1"),
				attribute.String("key2", "42"),
				attribute.String("key3", "true"),
			},
		},
		{
			name:          "odd number of elements",
			keysAndValues: []any{"key1", "value1", "key2"},
			expectedOutput: []attribute.KeyValue{
				attribute.String("key1", "value1"),
				attribute.String("key2", "MISSING"),
			},
		},
		{
			name:          "non-string key",
			keysAndValues: []any{123, "value1"},
			expectedOutput: []attribute.KeyValue{
				attribute.String("123", "value1"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := kvToAttributes(tt.keysAndValues)
			assert.Equal(t, tt.expectedOutput, result)
		})
	}
}
