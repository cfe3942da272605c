package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/ctxutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type AuthResult struct {
	AccessToken string `json:"access_token"`
}

type JWTClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	EnsureAdmin(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	bcryptCost    int
}

// NewAuthService builds the auth service. avatarService may be nil, in which
// case accounts are created without an avatar.
func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	bcryptCost int,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		bcryptCost:    bcryptCost,
	}
}

// Register creates a student account. Instructor accounts only come from
// EnsureAdmin.
func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := as.createUser(ctx, in, types.RoleStudent)
	if err != nil {
		return nil, apierr.Normalize(err, "Registration failed")
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, apierr.Normalize(err, "Registration failed")
	}
	return &AuthResult{AccessToken: token}, nil
}

// EnsureAdmin creates the configured instructor account when it is missing.
// An existing admin with the same email is returned unchanged; an existing
// non-admin is never promoted.
func (as *authService) EnsureAdmin(ctx context.Context, in RegisterInput) (*types.User, error) {
	email := normalizeEmail(in.Email)
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, apierr.Normalize(err, "Admin bootstrap failed")
	}
	if len(users) > 0 {
		if users[0].Role != types.RoleAdmin {
			return nil, apierr.Conflict("`email` already belongs to a non-admin account")
		}
		return users[0], nil
	}
	user, err := as.createUser(ctx, in, types.RoleAdmin)
	if err != nil {
		return nil, apierr.Normalize(err, "Admin bootstrap failed")
	}
	as.log.Info("admin account created", "user_id", user.ID.String())
	return user, nil
}

func (as *authService) createUser(ctx context.Context, in RegisterInput, role string) (*types.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apierr.BadRequest("email and password are required")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		as.log.Error("email lookup failed", "error", err)
		return nil, err
	}
	if exists {
		return nil, apierr.Conflict("`email` already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      role,
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("`email` already exists")
		}
		as.log.Error("create user failed", "error", err)
		return nil, err
	}

	if as.avatarService != nil {
		if err := as.avatarService.CreateAndUploadUserAvatar(ctx, nil, user); err != nil {
			as.log.Warn("avatar generation failed (ignored)", "user_id", user.ID.String(), "error", err)
		}
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apierr.Unauthorized("Invalid credentials")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		as.log.Error("user lookup failed", "error", err)
		return nil, apierr.Normalize(err, "Login failed")
	}
	if len(users) == 0 {
		return nil, apierr.Unauthorized("Invalid credentials")
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("Invalid credentials")
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, apierr.Normalize(err, "Login failed")
	}
	return &AuthResult{AccessToken: token}, nil
}

func (as *authService) Profile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := as.loadUser(ctx, userID)
	if err != nil {
		return nil, apierr.Normalize(err, "Invalid user ID format")
	}
	return user, nil
}

// UpdateAvatar replaces the caller's avatar with an uploaded picture.
func (as *authService) UpdateAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error) {
	if as.avatarService == nil {
		return nil, apierr.BadRequest("Avatar uploads are not available")
	}
	user, err := as.loadUser(ctx, userID)
	if err != nil {
		return nil, apierr.Normalize(err, "Invalid user ID format")
	}
	if err := as.avatarService.CreateAndUploadUserAvatarFromImage(ctx, nil, user, raw); err != nil {
		as.log.Warn("avatar upload failed", "user_id", userID.String(), "error", err)
		return nil, apierr.BadRequest("Failed to update avatar")
	}
	return user, nil
}

func (as *authService) loadUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, apierr.BadRequest("Invalid user ID format")
	}
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 || users[0] == nil {
		return nil, apierr.NotFound("User not found")
	}
	return users[0], nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Name:  user.FirstName,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing or invalid token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, apierr.Unauthorized("Token expired")
		}
		return ctx, apierr.Unauthorized(fmt.Sprintf("Failed to parse token: %v", err))
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized("Invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("Invalid user id in token")
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Name:        claims.Name,
		Email:       claims.Email,
		Role:        claims.Role,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
