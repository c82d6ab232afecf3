package main

import (
	"context"
	"time"

	"github.com/YFrancis10/MeMantra-sub001/internal/config"
	"github.com/YFrancis10/MeMantra-sub001/internal/db"
	"github.com/YFrancis10/MeMantra-sub001/internal/httpapi"
	"github.com/YFrancis10/MeMantra-sub001/internal/notify"
	"github.com/YFrancis10/MeMantra-sub001/internal/pkg/logger"
	"github.com/YFrancis10/MeMantra-sub001/internal/store/rabbitmq"
	"github.com/YFrancis10/MeMantra-sub001/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rds.Ping(ctx); err != nil {
		log.Warn("redis unreachable, captcha flows will fail", "addr", cfg.RedisAddr, "err", err)
	}
	cancel()

	// message pushes degrade gracefully when the queue is down
	var pub notify.Publisher
	if p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Warn("rabbitmq unreachable, push jobs disabled", "err", err)
	} else {
		pub = p
		defer p.Close()
	}

	r := httpapi.NewRouter(gdb, cfg, rds, pub, log)

	log.Info("api listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}
