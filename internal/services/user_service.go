package services

import (
	"context"
	"errors"
	"time"

	"github.com/civictrack/backend/internal/config"
	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/repository"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/civictrack/backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UserSessionStore is the slice of the session surface the user service
// needs. database.SessionStore is the Redis implementation; tokens are only
// honored while their session record exists, so dropping a session revokes
// them immediately.
type UserSessionStore interface {
	SetUserSession(ctx context.Context, userID string, sessionData interface{}, expiration time.Duration) error
	DeleteUserSession(ctx context.Context, userID string) error
	BlacklistToken(ctx context.Context, token string, expiration time.Duration) error
}

type UserService interface {
	// Register creates a citizen account. Officer and admin accounts are
	// provisioned by an admin through CreateOfficer.
	Register(ctx context.Context, req *models.UserRegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.UserLoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error)
	CreateOfficer(ctx context.Context, actor models.Actor, user *models.User, password string) (*models.UserResponse, error)
	SetActivation(ctx context.Context, actor models.Actor, userID uuid.UUID, active bool) error
	ListUsers(ctx context.Context, actor models.Actor, filter *models.UserFilter) ([]models.UserResponse, int64, error)
}

type userService struct {
	userRepo     repository.UserRepository
	jwtManager   *utils.JWTManager
	sessionStore UserSessionStore
	config       *config.Config
}

func NewUserService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	sessionStore UserSessionStore,
	cfg *config.Config,
) UserService {
	return &userService{
		userRepo:     userRepo,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		config:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, req *models.UserRegisterRequest) (*models.AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.RoleCitizen,
		IsActive:  true,
	}
	if req.WardID != nil && *req.WardID != "" {
		wardID, err := uuid.Parse(*req.WardID)
		if err != nil {
			return nil, errors.New("invalid ward id")
		}
		user.WardID = &wardID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(ctx, user)
}

func (s *userService) Login(ctx context.Context, req *models.UserLoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.issueToken(ctx, user)
}

func (s *userService) issueToken(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.jwtManager.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	// The session record is what keeps the token live; a fresh login
	// replaces any previous session for the user.
	if err := s.sessionStore.SetUserSession(ctx, user.ID.String(), token, time.Until(expiresAt)); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User:      models.ToUserResponse(user),
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	expiration := time.Duration(s.config.JWT.ExpireHour) * time.Hour
	return s.sessionStore.BlacklistToken(ctx, token, expiration)
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := models.ToUserResponse(user)
	return &resp, nil
}

func (s *userService) CreateOfficer(ctx context.Context, actor models.Actor, user *models.User, password string) (*models.UserResponse, error) {
	if actor.Role != models.RoleAdmin {
		return nil, workflow.ErrForbidden
	}
	switch user.Role {
	case models.RoleDepartmentOfficer, models.RoleWardOfficer, models.RoleAdmin:
	default:
		return nil, errors.New("invalid officer role")
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.Password = hashedPassword
	user.IsActive = true

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := models.ToUserResponse(user)
	return &resp, nil
}

func (s *userService) SetActivation(ctx context.Context, actor models.Actor, userID uuid.UUID, active bool) error {
	if actor.Role != models.RoleAdmin {
		return workflow.ErrForbidden
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	// Dropping the session revokes the user's outstanding tokens; the
	// middleware refuses tokens with no live session.
	if !active {
		return s.sessionStore.DeleteUserSession(ctx, userID.String())
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, actor models.Actor, filter *models.UserFilter) ([]models.UserResponse, int64, error) {
	if actor.Role != models.RoleAdmin {
		return nil, 0, workflow.ErrForbidden
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, models.ToUserResponse(&users[i]))
	}
	return responses, total, nil
}
