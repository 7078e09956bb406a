package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-rbac/config"
	"github.com/d60-Lab/blog-rbac/internal/api"
	"github.com/d60-Lab/blog-rbac/internal/api/handler"
	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/model"
	"github.com/d60-Lab/blog-rbac/internal/repository"
	"github.com/d60-Lab/blog-rbac/internal/service"
)

type testApp struct {
	router   http.Handler
	tokens   *auth.TokenManager
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tokens := auth.NewTokenManager("test-secret", time.Hour, rdb)

	h := handler.New(
		service.NewAuthService(userRepo, tokens),
		service.NewPostService(postRepo),
		service.NewUserService(userRepo),
	)
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	router := api.NewRouter(cfg, h, tokens, userRepo)

	return &testApp{router: router, tokens: tokens, userRepo: userRepo, postRepo: postRepo}
}

// loginAs 直接建用户并签发令牌，绕过注册接口。
func (a *testApp) loginAs(t *testing.T, username string, role auth.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Username: username, Email: username + "@example.com", Password: string(hash), Role: role}
	require.NoError(t, a.userRepo.Create(context.Background(), u))
	token, err := a.tokens.Issue(u.ID)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	a := newTestApp(t)
	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/posts"},
		{http.MethodGet, "/api/v1/posts/some-id"},
		{http.MethodPost, "/api/v1/posts"},
		{http.MethodPut, "/api/v1/posts/some-id"},
		{http.MethodDelete, "/api/v1/posts/some-id"},
		{http.MethodGet, "/api/v1/users"},
	} {
		w := a.do(t, rt.method, rt.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

// 完整场景：Editor A 发文 -> Editor B 改不了 -> Admin 改得了 ->
// Viewer 删不了 -> Admin 删得了 -> 再查 404。
func TestRBACScenario(t *testing.T) {
	a := newTestApp(t)
	editorA := a.loginAs(t, "editor-a", auth.RoleEditor)
	editorB := a.loginAs(t, "editor-b", auth.RoleEditor)
	admin := a.loginAs(t, "admin", auth.RoleAdmin)
	viewer := a.loginAs(t, "viewer", auth.RoleViewer)

	// Editor A 发文，作者为本人
	w := a.do(t, http.MethodPost, "/api/v1/posts", editorA, map[string]any{
		"title": "a post", "content": "hello",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data model.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	postID := created.Data.ID
	require.NotEmpty(t, postID)

	authorID, err := a.userRepo.FindByUsername(context.Background(), "editor-a")
	require.NoError(t, err)
	assert.Equal(t, authorID.ID, created.Data.AuthorID)

	// 任意已认证角色可读
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/posts/"+postID, viewer, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/posts", viewer, nil).Code)

	// Editor B 更新他人文章 -> 403
	w = a.do(t, http.MethodPut, "/api/v1/posts/"+postID, editorB, map[string]any{"title": "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin 更新任意文章 -> 200 且字段变更
	w = a.do(t, http.MethodPut, "/api/v1/posts/"+postID, admin, map[string]any{"title": "admin edit"})
	require.Equal(t, http.StatusOK, w.Code)
	stored, err := a.postRepo.FindByID(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, "admin edit", stored.Title)

	// Viewer 删除 -> 403；Editor（作者）删除 -> 403
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodDelete, "/api/v1/posts/"+postID, viewer, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodDelete, "/api/v1/posts/"+postID, editorA, nil).Code)

	// Admin 删除 -> 200，随后 Get -> 404
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodDelete, "/api/v1/posts/"+postID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/v1/posts/"+postID, admin, nil).Code)
}

func TestViewerCannotCreate(t *testing.T) {
	a := newTestApp(t)
	viewer := a.loginAs(t, "viewer", auth.RoleViewer)
	w := a.do(t, http.MethodPost, "/api/v1/posts", viewer, map[string]any{
		"title": "t", "content": "c",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateValidationReturns400(t *testing.T) {
	a := newTestApp(t)
	editor := a.loginAs(t, "editor", auth.RoleEditor)
	w := a.do(t, http.MethodPost, "/api/v1/posts", editor, map[string]any{"title": "t"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorIDNeverClientSupplied(t *testing.T) {
	a := newTestApp(t)
	editor := a.loginAs(t, "editor", auth.RoleEditor)
	w := a.do(t, http.MethodPost, "/api/v1/posts", editor, map[string]any{
		"title": "t", "content": "c", "author_id": "forged-id",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data model.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	u, err := a.userRepo.FindByUsername(context.Background(), "editor")
	require.NoError(t, err)
	assert.Equal(t, u.ID, created.Data.AuthorID)
}

// 资源不存在时，连角色本会被拒的调用者也先拿到 404。
func TestMissingResource404PrecedesRoleDenial(t *testing.T) {
	a := newTestApp(t)
	viewer := a.loginAs(t, "viewer", auth.RoleViewer)
	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodPut, "/api/v1/posts/no-such-id", viewer, map[string]any{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodDelete, "/api/v1/posts/no-such-id", viewer, nil).Code)
}

func TestAdminUserManagement(t *testing.T) {
	a := newTestApp(t)
	admin := a.loginAs(t, "admin", auth.RoleAdmin)
	editor := a.loginAs(t, "editor", auth.RoleEditor)

	// 非 admin 进不了管理面
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodGet, "/api/v1/users", editor, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/users", admin, nil).Code)

	// 提升 editor 为 admin
	u, err := a.userRepo.FindByUsername(context.Background(), "editor")
	require.NoError(t, err)
	w := a.do(t, http.MethodPut, "/api/v1/users/"+u.ID+"/role", admin, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)

	// 角色变更下一个请求生效：原 editor 令牌现在能删文章了吗？先发一篇再验证
	post := a.do(t, http.MethodPost, "/api/v1/posts", editor, map[string]any{"title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, post.Code)
	var created struct {
		Data model.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(post.Body.Bytes(), &created))
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodDelete, "/api/v1/posts/"+created.Data.ID, editor, nil).Code)

	// 非法角色值 fail-closed -> 400
	w = a.do(t, http.MethodPut, "/api/v1/users/"+u.ID+"/role", admin, map[string]any{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
