// Package redisstore implements the challenge store on top of redis so
// challenges survive a node restart and expire on the server.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces the challenge keys.
const keyPrefix = "ledger:challenge:"

// Store keeps each challenge under its own key with a server side expiry.
type Store struct {
	client *redis.Client
}

// New constructs a store for the redis server at the specified address.
func New(addr string, password string, db int) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Store{client: client}
}

// Ping verifies the redis server can be reached.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connections to redis.
func (s *Store) Close() error {
	return s.client.Close()
}

// Put binds the token to the sender.
func (s *Store) Put(ctx context.Context, sender database.Address, token string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+string(sender), token, ttl).Err()
}

// Take removes and returns the token bound to the sender. Redis drops the
// key on expiry, so an expired challenge looks like a missing one.
func (s *Store) Take(ctx context.Context, sender database.Address) (string, error) {
	token, err := s.client.GetDel(ctx, keyPrefix+string(sender)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrMissingChallenge
		}
		return "", err
	}

	return token, nil
}
