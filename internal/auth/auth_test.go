package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

func TestAllows(t *testing.T) {
	p := Principal{Role: models.RoleFrontDesk}

	assert.True(t, Allows(p, models.RoleFrontDesk, models.RoleAdmin))
	assert.False(t, Allows(p, models.RoleDoctor))
	assert.False(t, Allows(p))
	assert.False(t, ValidRole("paciente"))
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 7, Username: "dra_gomez", Role: models.RoleDoctor}

	raw, err := issuer.Issue(user, time.Now())
	require.NoError(t, err)

	p, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 7, Username: "dra_gomez", Role: models.RoleDoctor}, p)
	assert.True(t, p.IsDoctor())
}

func TestParseRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: 7, Username: "dra_gomez", Role: models.RoleDoctor}

	expired, err := issuer.Issue(user, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = issuer.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenIssuer("other", time.Hour).Issue(user, time.Now())
	require.NoError(t, err)
	_, err = issuer.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
