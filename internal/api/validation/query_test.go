package validation

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryNumber(t *testing.T) {
	tests := []struct {
		url      string
		required bool
		want     int64
		errType  string
	}{
		{"/?limit=25", false, 25, ""},
		{"/", false, 10, ""},
		{"/", true, 0, "validation.query.parameter.missing"},
		{"/?limit=ten", false, 0, "validation.query.parameter.invalidType"},
		{"/?limit=0", false, 0, "validation.query.parameter.number.outOfRange"},
		{"/?limit=101", false, 0, "validation.query.parameter.number.outOfRange"},
	}
	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			request := httptest.NewRequest("GET", test.url, nil)
			got, err := QueryNumber(request, "limit", test.required, 10, 1, 100)
			if test.errType == "" {
				require.Nil(t, err)
				assert.Equal(t, test.want, got)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, test.errType, err.Type)
			assert.Equal(t, "limit", err.Details["parameter"])
		})
	}
}
