package handlers_test

import (
	"encoding/json"
	"testing"

	"github.com/dom/jbf-storefront/internal/api/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    handlers.Price
		wantErr bool
	}{
		{"number", `12.5`, 12.5, false},
		{"numeric string", `"129.90"`, 129.90, false},
		{"padded string", `" 7 "`, 7, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"words", `"ten"`, 0, true},
		{"infinity", `"Inf"`, 0, true},
		{"negative infinity", `"-Infinity"`, 0, true},
		{"not a number", `"NaN"`, 0, true},
		{"boolean", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p handlers.Price
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}
