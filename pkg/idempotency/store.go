// Package idempotency evita aplicar dos veces la misma escritura cuando el cliente reintenta
// con el mismo Idempotency-Key. Las claves viven en Redis con TTL.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInProgress otra petición con la misma clave aún no terminó.
	ErrInProgress = errors.New("idempotency: petición con la misma clave en curso")
	// ErrFingerprintMismatch la clave ya se usó con un cuerpo distinto.
	ErrFingerprintMismatch = errors.New("idempotency: la clave ya se usó con otro cuerpo")
)

const pendingMarker = "pending"

// Response respuesta guardada para repetirla ante un reintento.
type Response struct {
	Fingerprint string `json:"fingerprint"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Backend lo que el middleware necesita de un almacén de claves.
type Backend interface {
	// Acquire reserva la clave. Devuelve la respuesta guardada si ya se completó con el mismo fingerprint.
	Acquire(ctx context.Context, key, fingerprint string) (*Response, error)
	Complete(ctx context.Context, key string, resp Response) error
	Release(ctx context.Context, key string) error
}

var _ Backend = (*Store)(nil)

// Store implementa Backend sobre Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Acquire(ctx context.Context, key, fingerprint string) (*Response, error) {
	ok, err := s.rdb.SetNX(ctx, key, pendingMarker+":"+fingerprint, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("idempotency: setnx: %w", err)
	}
	if ok {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expiró entre SETNX y GET: se reintenta una sola vez.
		ok, err = s.rdb.SetNX(ctx, key, pendingMarker+":"+fingerprint, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("idempotency: setnx: %w", err)
		}
		if ok {
			return nil, nil
		}
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency: get: %w", err)
	}
	return decodeStored(raw, fingerprint)
}

func (s *Store) Complete(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency: encode: %w", err)
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: set: %w", err)
	}
	return nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("idempotency: del: %w", err)
	}
	return nil
}

// decodeStored interpreta el valor guardado: marcador pendiente o respuesta completa.
func decodeStored(raw []byte, fingerprint string) (*Response, error) {
	s := string(raw)
	if len(s) > len(pendingMarker) && s[:len(pendingMarker)+1] == pendingMarker+":" {
		if s[len(pendingMarker)+1:] != fingerprint {
			return nil, ErrFingerprintMismatch
		}
		return nil, ErrInProgress
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("idempotency: decode: %w", err)
	}
	if resp.Fingerprint != fingerprint {
		return nil, ErrFingerprintMismatch
	}
	return &resp, nil
}
