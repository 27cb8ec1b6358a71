// Package cache stores analysis results in Valkey.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	connWriteTimeout = 5 * time.Second
	pingTimeout      = 3 * time.Second
)

var ErrNoAddress = errors.New("cache: valkey address is empty")

// Options configures the Valkey connection.
type Options struct {
	Addr     string
	Password string
}

// Valkey implements analysis.ResultCache on a Valkey (or Redis) server.
// Safe for concurrent use.
type Valkey struct {
	client valkey.Client
}

// NewValkey connects to opts.Addr and pings it once.
func NewValkey(ctx context.Context, opts Options) (*Valkey, error) {
	if opts.Addr == "" {
		return nil, ErrNoAddress
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{opts.Addr},
		Password:         opts.Password,
		ConnWriteTimeout: connWriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: connect %s: %w", opts.Addr, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", opts.Addr, err)
	}
	return &Valkey{client: client}, nil
}

// Get returns the stored value; a missing key is (nil, false, nil).
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := v.client.Do(ctx, v.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores value under key and expires it after ttl.
func (v *Valkey) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmds := []valkey.Completed{
		v.client.B().Set().Key(key).Value(string(value)).Build(),
		v.client.B().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build(),
	}
	for _, res := range v.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("cache: set %s: %w", key, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}

// ttlSeconds rounds up to whole seconds; EXPIRE rejects zero.
func ttlSeconds(ttl time.Duration) int64 {
	s := int64((ttl + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
