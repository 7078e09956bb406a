package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidCredential 凭证缺失/伪造/过期/已注销，统一对外表现为未认证。
var ErrInvalidCredential = errors.New("invalid credential")

const revokedKeyPrefix = "session:revoked:"

// TokenManager 签发与校验会话 JWT。令牌只携带 userID 和 jti，
// 不携带角色——角色每次请求从用户记录重读。
// 注销通过 Redis 维护 jti 黑名单，TTL 与令牌剩余有效期对齐。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
}

func NewTokenManager(secret string, ttl time.Duration, rdb *redis.Client) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, rdb: rdb}
}

// Issue 为用户签发 HS256 会话令牌。
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		Issuer:    "blog-rbac",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify 校验令牌签名与有效期，并检查 jti 黑名单。
// 任何解析失败都折叠为 ErrInvalidCredential，Redis 故障除外。
func (m *TokenManager) Verify(ctx context.Context, raw string) (userID string, err error) {
	claims, err := m.parse(raw)
	if err != nil {
		return "", ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredential
	}
	if m.rdb != nil {
		n, err := m.rdb.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err != nil {
			return "", err
		}
		if n > 0 {
			return "", ErrInvalidCredential
		}
	}
	return claims.Subject, nil
}

// Revoke 注销令牌：将 jti 拉黑直到令牌自然过期。
// 无效令牌直接视为已注销，不报错。
func (m *TokenManager) Revoke(ctx context.Context, raw string) error {
	claims, err := m.parse(raw)
	if err != nil {
		return nil
	}
	if m.rdb == nil || claims.ExpiresAt == nil {
		return nil
	}
	remain := time.Until(claims.ExpiresAt.Time)
	if remain <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revokedKeyPrefix+claims.ID, 1, remain).Err()
}

func (m *TokenManager) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
