package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/platform/gcp"
	"github.com/yungbote/lms-backend/internal/platform/localmedia"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset.
	Redis *goredis.Client
	Media *gcp.MediaHost
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var rdb *goredis.Client
	if cfg.Redis.Enabled() {
		c, err := redis.NewClient(ctx, log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		rdb = c
	} else {
		log.Warn("REDIS_ADDR not set; course cache and login rate limiting disabled")
	}

	prober := localmedia.NewProber(log, cfg.Media.FFProbePath)
	host, err := gcp.NewMediaHost(ctx, log, cfg.Media, prober)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init media host: %w", err)
	}

	return Clients{
		Redis: rdb,
		Media: host,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Media != nil {
		_ = c.Media.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
