package utils

import (
	"testing"

	"github.com/callwork/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	userID := uuid.New()

	tokens, err := GenerateTokenPair(userID, "operator@example.com", models.RoleOperator)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Greater(t, tokens.ExpiresIn, int64(0))

	claims, err := ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "operator@example.com", claims.Email)
	assert.Equal(t, models.RoleOperator, claims.Role)

	refreshClaims, err := ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)

	_, err = ValidateToken("")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTamperedToken(t *testing.T) {
	tokens, err := GenerateTokenPair(uuid.New(), "operator@example.com", models.RoleOperator)
	require.NoError(t, err)

	tampered := tokens.AccessToken + "x"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}
