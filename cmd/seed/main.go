package main

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/blog-rbac/config"
	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/model"
	"github.com/d60-Lab/blog-rbac/internal/repository"
	"github.com/d60-Lab/blog-rbac/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

// 幂等种子：三个角色各一个演示账号，密码均为 password123。
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	userRepo := repository.NewUserRepository(db)
	ctx := context.Background()

	seeds := []struct {
		username string
		role     auth.Role
	}{
		{"admin", auth.RoleAdmin},
		{"editor", auth.RoleEditor},
		{"viewer", auth.RoleViewer},
	}

	hash := must(bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost))
	for _, s := range seeds {
		u := must(userRepo.FindByUsername(ctx, s.username))
		if u == nil {
			u = &model.User{
				Username: s.username,
				Email:    s.username + "@example.com",
				Password: string(hash),
				Role:     s.role,
			}
			if err := userRepo.Create(ctx, u); err != nil {
				panic(err)
			}
		}
		fmt.Printf("user %-8s role=%-7s id=%s\n", u.Username, u.Role, u.ID)
	}
}
