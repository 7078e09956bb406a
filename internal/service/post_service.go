package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/model"
	"github.com/d60-Lab/blog-rbac/internal/repository"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("invalid input")
)

// UpdatePostInput 部分更新：nil 字段保持原值。
type UpdatePostInput struct {
	Title    *string
	Content  *string
	IsPublic *bool
}

// PostService 文章服务。针对具体文章 id 的操作（Update/Delete）在这里
// 完成 存在性检查 -> 角色闸门 -> 所有权闸门 的流水线：
// 资源缺失先于角色判定返回 not found，角色不够的调用者同样拿到 404。
// Create 的角色闸门在路由中间件层（见 api/router）。
type PostService interface {
	List(ctx context.Context, page, pageSize int) ([]*model.Post, error)
	Get(ctx context.Context, postID string) (*model.Post, error)
	Create(ctx context.Context, caller auth.Identity, title, content string, isPublic bool) (*model.Post, error)
	Update(ctx context.Context, caller auth.Identity, postID string, in UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, caller auth.Identity, postID string) error
}

type postService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

func (s *postService) List(ctx context.Context, page, pageSize int) ([]*model.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	return s.postRepo.List(ctx, offset, pageSize)
}

func (s *postService) Get(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Create 作者永远取认证身份，客户端无法指定 author_id。
func (s *postService) Create(ctx context.Context, caller auth.Identity, title, content string, isPublic bool) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	post := &model.Post{
		Title:    title,
		Content:  content,
		AuthorID: caller.UserID,
		IsPublic: isPublic,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, caller auth.Identity, postID string, in UpdatePostInput) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if dec := auth.AuthorizeRole(caller, auth.RoleEditor, auth.RoleAdmin); !dec.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, dec.Reason)
	}
	if dec := auth.AuthorizeOwnership(caller, post.AuthorID, auth.OpEdit); !dec.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, dec.Reason)
	}

	fields := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		fields["title"] = t
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, fmt.Errorf("%w: content must not be empty", ErrValidation)
		}
		fields["content"] = *in.Content
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
	}
	if len(fields) > 0 {
		if err := s.postRepo.Update(ctx, postID, fields); err != nil {
			return nil, err
		}
	}
	return s.postRepo.FindByID(ctx, postID)
}

func (s *postService) Delete(ctx context.Context, caller auth.Identity, postID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	// 删除无所有权维度，仅 admin。
	if dec := auth.AuthorizeRole(caller, auth.RoleAdmin); !dec.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, dec.Reason)
	}
	return s.postRepo.Delete(ctx, postID)
}
