package service

import (
	"context"
	"fmt"

	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/mapper"
	"github.com/epic-events/crm-api/internal/policy"
	"github.com/epic-events/crm-api/internal/repository"
	"github.com/epic-events/crm-api/internal/validation"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo   *repository.UserRepository
	policy     *policy.Evaluator
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	evaluator *policy.Evaluator,
	bcryptCost int,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		policy:     evaluator,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate verifies credentials for token issuance. It deliberately
// returns the same error for an unknown username and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationCreate, domain.KindUser, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	if !req.Role.IsValid() {
		return nil, invalidInput(&validation.Error{Field: "role", Reason: validation.ReasonInvalidRole})
	}
	if err := validation.ValidatePhone(req.Phone); err != nil {
		return nil, invalidInput(err)
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeErr(fmt.Errorf("failed to create user: %w", err), domain.KindUser, req.Username)
	}

	s.logger.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.UserDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, domain.KindUser, username)
	}

	target := &policy.Target{UserID: user.ID}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindUser, target, nil); !v.Allow {
		return nil, denied(v)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.UserDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if v := s.policy.Decide(p, policy.OperationRead, domain.KindUser, nil, nil); !v.Allow {
		return nil, denied(v)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, mapper.ToUserDTO(&users[i]))
	}
	return dtos, nil
}

func (s *UserService) Update(ctx context.Context, username string, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, domain.KindUser, username)
	}

	target := &policy.Target{
		UserID:      user.ID,
		RoleChanged: req.Role != "" && req.Role != user.Role,
	}
	if v := s.policy.Decide(p, policy.OperationUpdate, domain.KindUser, target, nil); !v.Allow {
		return nil, denied(v)
	}

	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		if err := validation.ValidatePhone(req.Phone); err != nil {
			return nil, invalidInput(err)
		}
		user.Phone = req.Phone
	}
	if req.Role != "" {
		if !req.Role.IsValid() {
			return nil, invalidInput(&validation.Error{Field: "role", Reason: validation.ReasonInvalidRole})
		}
		user.Role = req.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storeErr(fmt.Errorf("failed to update user: %w", err), domain.KindUser, username)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	p, err := principalFrom(ctx)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return storeErr(err, domain.KindUser, username)
	}

	target := &policy.Target{UserID: user.ID}
	if v := s.policy.Decide(p, policy.OperationDelete, domain.KindUser, target, nil); !v.Allow {
		return denied(v)
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted, contact references cleared",
		zap.String("username", username))
	return nil
}
