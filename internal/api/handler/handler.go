package handler

import (
	"github.com/d60-Lab/blog-rbac/internal/service"
)

// Handler 聚合各业务 handler 依赖。
type Handler struct {
	authSvc service.AuthService
	postSvc service.PostService
	userSvc service.UserService
}

func New(authSvc service.AuthService, postSvc service.PostService, userSvc service.UserService) *Handler {
	return &Handler{authSvc: authSvc, postSvc: postSvc, userSvc: userSvc}
}
