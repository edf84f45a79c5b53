package main

import (
	"os"

	auction "auction-hub/internal/auctionService"
	"auction-hub/internal/auth"
	bidding "auction-hub/internal/biddingService"
	"auction-hub/internal/config"
	"auction-hub/internal/notifier"
	"auction-hub/internal/registry"
	"auction-hub/internal/server"
	"auction-hub/internal/sweeper"
	handler "auction-hub/services/auction/handler"
	"auction-hub/utils"
)

func main() {
	cfg, err := config.LoadConfig("./app.env")
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		utils.Fatal("failed to create upload dir", map[string]any{"error": err.Error()})
	}

	store := registry.NewStore()

	// Disconnect releases the session's display name through the same
	// serialized event mutation path as interactive commands.
	hub := notifier.NewHub(store.Release)
	go hub.Run()

	biddingSvc := bidding.NewBiddingService(store, hub)
	auctionSvc := auction.NewAuctionService(store, hub, cfg.PaymentWindow)

	sweep, err := sweeper.NewSweeper(store, hub, cfg.SweepInterval)
	if err != nil {
		utils.Fatal("failed to create sweeper", map[string]any{"error": err.Error()})
	}
	if err := sweep.Start(); err != nil {
		utils.Fatal("failed to start sweeper", map[string]any{"error": err.Error()})
	}
	defer sweep.Stop()

	tokenMaker := auth.NewTokenMaker(cfg.TokenSecret, cfg.TokenTTL)
	auctionHandler := handler.NewAuctionHandler(auctionSvc, biddingSvc, tokenMaker, cfg.HostSecret, cfg.UploadDir)

	router := server.SetupRouter(auctionHandler, tokenMaker, hub, cfg.UploadDir)

	utils.Info("starting auction server", map[string]any{"address": cfg.ServerAddress})
	if err := router.Run(cfg.ServerAddress); err != nil {
		utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
	}
}
