package redis

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenBlacklist 로그아웃된 토큰 저장소
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Claim 아직 막히지 않은 토큰이면 막고 true. 이미 막혀 있으면 false
	Claim(ctx context.Context, token string, ttl time.Duration) (bool, error)
}

type tokenBlacklist struct {
	local *cache.Cache
}

// NewTokenBlacklist Redis 가 연결돼 있으면 Redis 를, 아니면 프로세스 메모리를 쓴다.
// 메모리 저장은 인스턴스가 하나일 때만 의미가 있다
func NewTokenBlacklist() TokenBlacklist {
	return &tokenBlacklist{local: cache.New(time.Hour, 10*time.Minute)}
}

func (b *tokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if Enabled() {
		return BlacklistToken(ctx, token, ttl)
	}
	b.local.Set(token, struct{}{}, ttl)
	return nil
}

func (b *tokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if Enabled() {
		return IsTokenBlacklisted(ctx, token)
	}
	_, found := b.local.Get(token)
	return found, nil
}

func (b *tokenBlacklist) Claim(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	if Enabled() {
		return ClaimToken(ctx, token, ttl)
	}
	// Add 는 이미 있는 키면 실패한다
	return b.local.Add(token, struct{}{}, ttl) == nil, nil
}
