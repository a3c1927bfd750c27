package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/repos/testutil"
	"github.com/opencampus/registrar-backend/internal/requestdata"
	"github.com/opencampus/registrar-backend/internal/types"
)

func newAuth(t *testing.T) AuthService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewAuthService(db, log, repos.NewUserRepo(db, log), "test-secret", time.Minute, time.Hour)
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	user, err := auth.Register(ctx, RegisterInput{
		Email:    "Root@Example.EDU",
		Password: "long-enough",
		Role:     types.RoleStudent, // requested role loses to the bootstrap rule
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != types.RoleAdmin {
		t.Fatalf("first user role = %s, want ADMIN", user.Role)
	}
	if user.Email != "root@example.edu" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "long-enough" {
		t.Fatalf("password stored in the clear")
	}
}

func TestRegisterRequiresAdminAfterBootstrap(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	if _, err := auth.Register(ctx, RegisterInput{Email: "root@example.edu", Password: "long-enough"}); err != nil {
		t.Fatalf("bootstrap register: %v", err)
	}

	// Unauthenticated second registration is refused.
	_, err := auth.Register(ctx, RegisterInput{Email: "b@example.edu", Password: "long-enough"})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("anonymous register = %v, want ErrUnauthorized", err)
	}

	// A non-admin caller is refused too.
	staffCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{Role: types.RoleStaff})
	_, err = auth.Register(staffCtx, RegisterInput{Email: "b@example.edu", Password: "long-enough"})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("staff register = %v, want ErrUnauthorized", err)
	}

	adminCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{Role: types.RoleAdmin})
	user, err := auth.Register(adminCtx, RegisterInput{Email: "b@example.edu", Password: "long-enough"})
	if err != nil {
		t.Fatalf("admin register: %v", err)
	}
	if user.Role != types.RoleStaff {
		t.Fatalf("default role = %s, want STAFF", user.Role)
	}

	// Duplicate email conflicts.
	_, err = auth.Register(adminCtx, RegisterInput{Email: "b@example.edu", Password: "long-enough"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate email = %v, want ErrConflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	if _, err := auth.Register(ctx, RegisterInput{Email: "no-at-sign", Password: "long-enough"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("bad email = %v, want ErrValidation", err)
	}
	if _, err := auth.Register(ctx, RegisterInput{Email: "a@example.edu", Password: "short"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("short password = %v, want ErrValidation", err)
	}
}

func TestLoginAndTokenFlow(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t)

	registered, err := auth.Register(ctx, RegisterInput{Email: "root@example.edu", Password: "long-enough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Login(ctx, "root@example.edu", "wrong-password"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("wrong password = %v, want ErrUnauthorized", err)
	}
	if _, err := auth.Login(ctx, "nobody@example.edu", "long-enough"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("unknown email = %v, want ErrUnauthorized", err)
	}

	pair, err := auth.Login(ctx, "root@example.edu", "long-enough")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", pair)
	}

	authedCtx, err := auth.SetContextFromToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != registered.ID || rd.Role != types.RoleAdmin {
		t.Fatalf("request data = %+v", rd)
	}

	// A refresh token is not an access credential and vice versa.
	if _, err := auth.SetContextFromToken(ctx, pair.RefreshToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("refresh token as access = %v, want ErrUnauthorized", err)
	}
	if _, err := auth.Refresh(ctx, pair.AccessToken); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("access token as refresh = %v, want ErrUnauthorized", err)
	}

	renewed, err := auth.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if renewed.AccessToken == "" || renewed.RefreshToken == "" {
		t.Fatalf("incomplete renewed pair: %+v", renewed)
	}

	if _, err := auth.SetContextFromToken(ctx, "not-a-token"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("garbage token = %v, want ErrUnauthorized", err)
	}
}
