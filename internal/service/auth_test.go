package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/token"
)

var testJWTConfig = config.JWT{Secret: "test-secret-for-auth-tests", TTL: time.Hour}

func TestRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTConfig)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:     "Alice Example",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	// Emails are normalized to lower case.
	user, err := userRepo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	userID, role, err := token.Verify(testJWTConfig.Secret, login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, model.RoleUser, role)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTConfig)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *dto.RegisterRequest
	}{
		{"short name", &dto.RegisterRequest{Name: "Al", Email: "a@b.com", Password: "longenough"}},
		{"bad email", &dto.RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "longenough"}},
		{"short password", &dto.RegisterRequest{Name: "Alice", Email: "a@b.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTConfig)
	ctx := context.Background()

	req := &dto.RegisterRequest{Name: "Alice", Email: "a@b.com", Password: "longenough"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTConfig)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Alice", Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	// Unknown user and wrong password are indistinguishable to the
	// caller.
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@b.com", Password: "longenough"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	wantMsg := err.Error()

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "a@b.com", Password: "wrongwrong"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Equal(t, wantMsg, err.Error())
}
