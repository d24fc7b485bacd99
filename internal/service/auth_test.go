package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func newRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		Email:     "Cook@Example.com",
		Username:  "cook",
		FirstName: "Julia",
		LastName:  "Child",
		Password:  "s3cret-pass",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := auth.Register(ctx, newRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, loggedIn, err := auth.Login(ctx, "cook@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := auth.Register(ctx, newRegisterInput())
	require.NoError(t, err)

	_, err = auth.Register(ctx, newRegisterInput())
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)

	tests := []struct {
		name   string
		mutate func(in *service.RegisterInput)
		field  string
	}{
		{"missing email", func(in *service.RegisterInput) { in.Email = " " }, "email"},
		{"bad email", func(in *service.RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"missing username", func(in *service.RegisterInput) { in.Username = "" }, "username"},
		{"short password", func(in *service.RegisterInput) { in.Password = "short" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newRegisterInput()
			tt.mutate(&in)
			_, err := auth.Register(context.Background(), in)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()
	_, err := auth.Register(ctx, newRegisterInput())
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "cook@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, _, err = auth.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	ctx := context.Background()
	issuer := service.NewAuthService(db, "test-secret", time.Hour)
	user, err := issuer.Register(ctx, newRegisterInput())
	require.NoError(t, err)

	token, err := issuer.GenerateToken(user)
	require.NoError(t, err)

	_, err = service.NewAuthService(db, "other-secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	expired, err := service.NewAuthService(db, "test-secret", -time.Minute).GenerateToken(user)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(expired)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = issuer.ValidateToken("garbage")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
