package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/pkg/mailer"
	"studenthub-be/internal/repository/memory"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/pkg/events"
	pktNats "studenthub-be/pkg/nats"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserProfileResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	profileCache   *memory.ProfileCache
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	profileCache *memory.ProfileCache,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		profileCache:   profileCache,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, apperrors.NewPersistenceError("find user", err)
	}
	if existing != nil {
		return nil, apperrors.NewValidationError("email", "already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	// Registration is self-service for students only; admins are seeded.
	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: &hashStr,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         entity.UserRoleStudent,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// Two registrations racing on the same email: the unique index wins
		// where the earlier existence check could not.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewValidationError("email", "already registered")
		}
		return nil, apperrors.NewPersistenceError("create user", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewUserRegistered(user.Id.String(), user.Email)); err != nil {
			fmt.Printf("Failed to publish user registered event: %v\n", err)
		}
	}

	go func() {
		if emailErr := s.emailService.SendWelcome(user.Email, user.FullName()); emailErr != nil {
			fmt.Printf("Error sending welcome email: %v\n", emailErr)
		}
	}()

	return toUserProfile(user), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil || user == nil {
		return nil, apperrors.NewValidationError("credentials", "invalid email or password")
	}

	if user.PasswordHash == nil {
		return nil, apperrors.NewValidationError("credentials", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewValidationError("credentials", "invalid email or password")
	}

	if user.Status == entity.UserStatusBlocked {
		return nil, apperrors.NewAuthorizationError("login with a blocked account")
	}

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    string(user.Role),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: signedToken,
		User:  *toUserProfile(user),
	}, nil
}

func (s *authService) Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	if cached, ok := s.profileCache.Get(userId); ok {
		return toUserProfile(cached), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperrors.NewPersistenceError("find user", err)
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}

	s.profileCache.Save(user)
	return toUserProfile(user), nil
}

func toUserProfile(user *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:        user.Id,
		Email:     user.Email,
		FullName:  user.FullName(),
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}
