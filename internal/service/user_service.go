package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/model"
	"github.com/d60-Lab/blog-rbac/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// UserService 管理面用户操作（admin-only，角色闸门在路由中间件层）。
// 角色变更下一次请求生效：身份每次由中间件重新解析。
type UserService interface {
	List(ctx context.Context, page, pageSize int) ([]*model.User, error)
	UpdateRole(ctx context.Context, userID, role string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, page, pageSize int) ([]*model.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	return s.userRepo.List(ctx, offset, pageSize)
}

func (s *userService) UpdateRole(ctx context.Context, userID, role string) (*model.User, error) {
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.userRepo.UpdateRole(ctx, userID, parsed); err != nil {
		return nil, err
	}
	user.Role = parsed
	return user, nil
}
