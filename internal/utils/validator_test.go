// internal/utils/validator_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLicenseNumber(t *testing.T) {
	type subject struct {
		Number string `validate:"license_number"`
	}

	valid := []string{"NC-84213", "ABC", "PRM-2025-001", "A1B2C3"}
	for _, number := range valid {
		assert.NoError(t, ValidateStruct(&subject{Number: number}), number)
	}

	invalid := []string{"ab", "nc-84213", "-ABC", "ABC-", "A B", strings.Repeat("A", 21)}
	for _, number := range invalid {
		assert.Error(t, ValidateStruct(&subject{Number: number}), number)
	}
}

func TestValidateStrongPassword(t *testing.T) {
	type subject struct {
		Password string `validate:"strong_password"`
	}

	assert.NoError(t, ValidateStruct(&subject{Password: "Sup3rv!sion"}))

	for _, password := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSpecial123"} {
		assert.Error(t, ValidateStruct(&subject{Password: password}), password)
	}
}

func TestGenerateReferenceCode(t *testing.T) {
	code, err := GenerateReferenceCode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "CJ-"))
	assert.Len(t, code, 19)

	other, err := GenerateReferenceCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}
