package lock

// redis.go — lock distribuido por mercado para varias instancias del bot.
//
// SET key token NX PX ttl para adquirir; el release solo borra la key si el
// token sigue siendo el nuestro (script Lua), así un lock expirado y
// re-adquirido por otra instancia no se libera por error.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "predictbot:market-lock:"
	defaultTTL      = 5 * time.Second
	defaultRetryGap = 25 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis implementa ports.MarketLocker con go-redis.
type Redis struct {
	rdb      redis.UniversalClient
	ttl      time.Duration
	retryGap time.Duration
}

// NewRedis crea el locker. ttl <= 0 usa el default.
func NewRedis(rdb redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl, retryGap: defaultRetryGap}
}

// Connect abre el cliente y comprueba la conexión con PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("lock.Connect %s: %w", addr, err)
	}
	return rdb, nil
}

// Lock reintenta SET NX hasta obtener el lock o hasta que ctx expire.
func (r *Redis) Lock(ctx context.Context, marketID string) (func(), error) {
	key := keyPrefix + marketID
	token := uuid.NewString()

	ticker := time.NewTicker(r.retryGap)
	defer ticker.Stop()
	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock.Redis.Lock %s: %w", marketID, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// ctx propio: el del llamador puede estar cancelado cuando se libera
		relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.rdb, []string{key}, token).Err(); err != nil {
			slog.Warn("lock: redis release failed", "market_id", marketID, "err", err)
		}
	}, nil
}
