package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=4"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(signup{Email: "nope", FirstName: "Alexander"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"email":      "Enter a valid email address.",
		"first_name": "Ensure this field has no more than 4 characters.",
	}, verr.Fields())
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(signup{Email: "a@b.co", FirstName: "Al"}))
}
