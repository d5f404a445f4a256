// Package redis backs the OTP store with Redis, using native key TTLs for
// code expiry.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"printhub.org/internal/otp"
)

const keyPrefix = "otp:"

// OTPStore implements otp.Store on a Redis client.
type OTPStore struct {
	rdb *redis.Client
}

var _ otp.Store = (*OTPStore)(nil)

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, addr, password string) (*OTPStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &OTPStore{rdb: rdb}, nil
}

// NewOTPStore wraps an existing client (useful for tests).
func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

// Close releases the underlying client.
func (s *OTPStore) Close() error { return s.rdb.Close() }

func (s *OTPStore) Put(ctx context.Context, rec *otp.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.rdb.Set(ctx, keyPrefix+rec.Email, data, ttl).Err()
}

func (s *OTPStore) Find(ctx context.Context, email string) (*otp.Record, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, otp.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec otp.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *OTPStore) Update(ctx context.Context, rec *otp.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// KeepTTL preserves the original expiry across attempt increments.
	err = s.rdb.Set(ctx, keyPrefix+rec.Email, data, redis.KeepTTL).Err()
	if err != nil {
		return err
	}
	return nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, keyPrefix+email).Err()
}
