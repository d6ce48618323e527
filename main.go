package main

import (
	"fmt"
	"os"

	auction "pacomprar/internal/auctionService"
	"pacomprar/internal/config"
	"pacomprar/internal/identity"
	"pacomprar/internal/repository"
	"pacomprar/internal/server"
	user "pacomprar/internal/userService"
	"pacomprar/utils"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	repo, err := repository.Open(cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	var revoker identity.TokenRevoker
	if cfg.RedisAddr != "" {
		revoker = identity.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
	} else {
		revoker = identity.NewMemoryRevoker()
	}

	issuer := identity.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	auctionSvc := auction.NewService(repo)
	userSvc := user.NewService(repo, issuer, revoker)

	router := server.SetupRouter(auctionSvc, userSvc, issuer)

	addr := ":" + cfg.Port
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// configPath returns the config file location from env or the default.
func configPath() string {
	if p := os.Getenv("PACOMPRAR_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
