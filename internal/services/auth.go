package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/opencampus/registrar-backend/internal/pkg/errors"
	"github.com/opencampus/registrar-backend/internal/pkg/logger"
	"github.com/opencampus/registrar-backend/internal/repos"
	"github.com/opencampus/registrar-backend/internal/requestdata"
	"github.com/opencampus/registrar-backend/internal/types"
)

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	EntityID  *uuid.UUID `json:"entity_id"`
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

// Register creates an account. The very first account becomes ADMIN and
// needs no credential; after that only an authenticated admin may register
// users.
func (as *authService) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	count, err := as.userRepo.Count(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError("auth.Register", err)
	}

	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if count == 0 {
		role = types.RoleAdmin
	} else {
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.Role != types.RoleAdmin {
			return nil, apperrors.Unauthorized("only admins may register users")
		}
		switch role {
		case types.RoleAdmin, types.RoleStaff, types.RoleStudent, types.RoleParent:
		case "":
			role = types.RoleStaff
		default:
			return nil, apperrors.Validation("unknown role %q", role)
		}
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, input.Email)
	if err != nil {
		return nil, apperrors.MapError("auth.Register", err)
	}
	if exists {
		return nil, apperrors.Conflict("email %s is already registered", input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.MapError("auth.Register", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     input.Email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      role,
		EntityID:  input.EntityID,
	}
	if err := as.userRepo.Create(ctx, nil, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("email %s is already registered", input.Email)
		}
		return nil, apperrors.MapError("auth.Register", err)
	}
	as.log.Info("user registered", "id", user.ID, "role", user.Role)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, apperrors.Unauthorized("invalid credentials")
		}
		return TokenPair{}, apperrors.MapError("auth.Login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return TokenPair{}, apperrors.Unauthorized("invalid credentials")
	}
	return as.issuePair(user)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := as.parseToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if claims["typ"] != "refresh" {
		return TokenPair{}, apperrors.Unauthorized("not a refresh token")
	}
	userID, err := subjectID(claims)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, apperrors.Unauthorized("unknown account")
		}
		return TokenPair{}, apperrors.MapError("auth.Refresh", err)
	}
	return as.issuePair(user)
}

// SetContextFromToken validates an access token and stores the caller
// identity in the request context.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := as.parseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	if claims["typ"] != "access" {
		return ctx, apperrors.Unauthorized("not an access token")
	}
	userID, err := subjectID(claims)
	if err != nil {
		return ctx, err
	}
	role, _ := claims["role"].(string)
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issuePair(user *types.User) (TokenPair, error) {
	access, err := as.signToken(user, "access", as.accessTTL)
	if err != nil {
		return TokenPair{}, apperrors.MapError("auth.issuePair", err)
	}
	refresh, err := as.signToken(user, "refresh", as.refreshTTL)
	if err != nil {
		return TokenPair{}, apperrors.MapError("auth.issuePair", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (as *authService) signToken(user *types.User, typ string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"typ":  typ,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString(as.jwtSecretKey)
}

func (as *authService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Unauthorized("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthorized("invalid token claims")
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("invalid token subject")
	}
	return id, nil
}
