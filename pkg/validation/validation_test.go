package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerBody struct {
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

func TestCheckValid(t *testing.T) {
	result := Check(registerBody{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "Password1!",
	})
	assert.True(t, result.Ok())
	assert.Empty(t, result.Issues)
}

func TestCheckCollectsAllIssues(t *testing.T) {
	result := Check(registerBody{})
	require.False(t, result.Ok())
	require.Len(t, result.Issues, 3)

	fields := make(map[string]string)
	for _, issue := range result.Issues {
		fields[issue.Field] = issue.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "is required", fields["password"])
}

func TestCheckEmailFormat(t *testing.T) {
	result := Check(registerBody{Name: "Alice", Email: "not-an-email", Password: "Password1!"})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "email", result.Issues[0].Field)
	assert.Equal(t, "invalid email format", result.Issues[0].Message)
}

func TestPasswordRule(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "Password1!", true},
		{"minimum length", "Pass1!aa", true},
		{"too short", "Pa1!", false},
		{"too long", "Password1!Password1!x", false},
		{"no digit", "Password!!", false},
		{"no special", "Password11", false},
		{"no letter", "12345678!!", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Check(registerBody{Name: "Alice", Email: "alice@example.com", Password: tc.password})
			assert.Equal(t, tc.ok, result.Ok(), "password %q", tc.password)
		})
	}
}

func TestRequiredWithPairing(t *testing.T) {
	type settingsBody struct {
		Password    *string `validate:"required_with=NewPassword,omitempty,password"`
		NewPassword *string `validate:"required_with=Password,omitempty,password"`
	}

	pwd := "Password1!"

	assert.True(t, Check(settingsBody{}).Ok())
	assert.True(t, Check(settingsBody{Password: &pwd, NewPassword: &pwd}).Ok())

	result := Check(settingsBody{NewPassword: &pwd})
	require.False(t, result.Ok())
	assert.Equal(t, "password", result.Issues[0].Field)
}
