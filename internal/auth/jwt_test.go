package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

const testSecret = "test-secret-key"

func TestGenerateAndValidateJWT(t *testing.T) {
	userID := utils.NewSixID()

	token, err := GenerateJWT(userID, testSecret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateJWT(token, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID, "token must carry a jti for revocation")
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(utils.NewSixID(), testSecret, time.Hour)
	assert.NoError(t, err)

	_, err = ValidateJWT(token, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT(utils.NewSixID(), testSecret, -time.Minute)
	assert.NoError(t, err)

	_, err = ValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
