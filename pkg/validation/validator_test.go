package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type otpPayload struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,otp"`
}

type userCardPayload struct {
	Quality string           `json:"quality" validate:"omitempty,quality"`
	Price   *decimal.Decimal `json:"price" validate:"omitempty,price"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetails_UsesJSONNames(t *testing.T) {
	err := newValidator().Struct(signupPayload{Email: "nope", Password: strings.Repeat("x", 73)})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "max length 72 bytes", details["password"])
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	v := newValidator()
	base := signupPayload{Name: "Ash", Email: "ash@example.com"}

	base.Password = strings.Repeat("x", 72)
	assert.NoError(t, v.Struct(base))

	// 36 runes, 72 bytes
	base.Password = strings.Repeat("é", 36)
	assert.NoError(t, v.Struct(base))

	// 40 runes, 80 bytes
	base.Password = strings.Repeat("é", 40)
	err := v.Struct(base)
	require.Error(t, err)
	assert.Equal(t, "max length 72 bytes", ToDetails(err)["password"])
}

func TestRequiredFields(t *testing.T) {
	err := newValidator().Struct(signupPayload{})
	assert.Equal(t, []string{"name", "email", "password"}, RequiredFields(err))
	assert.Nil(t, RequiredFields(nil))
}

func TestOTPAlias(t *testing.T) {
	v := newValidator()
	assert.NoError(t, v.Struct(otpPayload{Email: "a@b.co", Token: "012345"}))

	err := v.Struct(otpPayload{Email: "a@b.co", Token: "12a456"})
	require.Error(t, err)
	assert.Equal(t, "must be a 6-digit code", ToDetails(err)["token"])

	assert.Error(t, v.Struct(otpPayload{Email: "a@b.co", Token: "12345"}))
}

func TestQualityAlias(t *testing.T) {
	v := newValidator()
	for _, q := range []string{"M", "NM", "LP", "MP", "HP", "DMG", "", "nm", " dmg "} {
		assert.NoError(t, v.Struct(userCardPayload{Quality: q}), q)
	}
	err := v.Struct(userCardPayload{Quality: "MINT"})
	require.Error(t, err)
	assert.Contains(t, ToDetails(err)["quality"], "NM")
}

func TestDecimalPrice(t *testing.T) {
	v := newValidator()
	ok := decimal.RequireFromString("0")
	neg := decimal.RequireFromString("-1.25")

	assert.NoError(t, v.Struct(userCardPayload{Price: &ok}))
	assert.NoError(t, v.Struct(userCardPayload{}))

	err := v.Struct(userCardPayload{Price: &neg})
	require.Error(t, err)
	assert.Equal(t, "must be between 0 and 9999999999.99", ToDetails(err)["price"])

	top := decimal.RequireFromString(MaxPrice)
	assert.NoError(t, v.Struct(userCardPayload{Price: &top}))
	huge := decimal.RequireFromString("10000000000")
	assert.Error(t, v.Struct(userCardPayload{Price: &huge}))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"a" 1}`), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	var n struct {
		A int `json:"a"`
	}
	err = json.Unmarshal([]byte(`{"a":"x"}`), &n)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
