package main

import (
	"log"

	"doctoc-backend/internal/bootstrap"
	"doctoc-backend/internal/shared/config"
	"doctoc-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s (store=%s)", addr, cfg.ObjectStoreType)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
