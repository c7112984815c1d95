package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventhub/internal/core/auth"
	"eventhub/internal/domain"
	"eventhub/internal/domain/domaintest"
)

func newTestUserService() (*UserService, *domaintest.UserRepo, *auth.JWTer) {
	users := domaintest.NewUserRepo()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "eventhub-test", TTL: time.Hour}
	return NewUserService(users, jwter), users, jwter
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, jwter := newTestUserService()
	ctx := context.Background()

	err := svc.Register(ctx, "alice", "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice@example.com", "s3cretpw")
	require.NoError(t, err)

	claims, err := jwter.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "user", claims.Role)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "  Alice@Example.COM ", "s3cretpw"))

	_, err := svc.Login(ctx, "alice@example.com", "s3cretpw")
	require.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "alice@example.com", "s3cretpw"))

	err := svc.Register(ctx, "impostor", "alice@example.com", "otherpw")
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestUserService()

	err := svc.Register(context.Background(), "", "alice@example.com", "s3cretpw")
	require.ErrorIs(t, err, domain.ErrValidation)

	err = svc.Register(context.Background(), "alice", "alice@example.com", "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "alice@example.com", "s3cretpw"))

	_, err := svc.Login(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestUserService()

	_, err := svc.Login(context.Background(), "nobody@example.com", "pw")
	require.ErrorIs(t, err, domain.ErrEmailNotRegistered)
}

func TestDeactivateBlocksLoginAndFreesEmail(t *testing.T) {
	svc, users, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "alice@example.com", "s3cretpw"))
	u, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, u.ID))

	_, err = svc.Login(ctx, "alice@example.com", "s3cretpw")
	require.ErrorIs(t, err, domain.ErrEmailNotRegistered)

	// A deactivated account does not block re-registration of the email.
	require.NoError(t, svc.Register(ctx, "alice2", "alice@example.com", "newpw"))
}

func TestDeactivateUnknownUser(t *testing.T) {
	svc, _, _ := newTestUserService()

	err := svc.Deactivate(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
