package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderApproved(t *testing.T) {
	subject, body, err := Render(TypeBusinessApproved, map[string]interface{}{
		"companyName":   "Crust & Co",
		"franchiseName": "Crust & Co Pizzeria",
	})
	require.NoError(t, err)

	assert.Contains(t, subject, "approved")
	assert.Contains(t, body, "Hello Crust & Co,")
	assert.Contains(t, body, "Crust & Co Pizzeria")
	assert.NotContains(t, body, "{{")
}

func TestRenderPasswordReset(t *testing.T) {
	_, body, err := Render(TypePasswordReset, map[string]interface{}{
		"code":       "123456",
		"ttlMinutes": 10,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")
}

func TestRenderUnknownType(t *testing.T) {
	_, _, err := Render("carrier_pigeon", nil)
	assert.Error(t, err)
}

func TestRenderStripsUnresolvedPlaceholders(t *testing.T) {
	_, body, err := Render(TypeBusinessRejected, map[string]interface{}{
		"companyName": "Crust & Co",
	})
	require.NoError(t, err)

	// franchiseName was not supplied; the placeholder must not leak.
	assert.NotContains(t, body, "{{")
	assert.NotContains(t, body, "}}")
}
