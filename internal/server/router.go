package server

import (
	"auction-hub/internal/auth"
	"auction-hub/internal/models"
	"auction-hub/internal/notifier"
	handler "auction-hub/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. Every
// mutating route is gated on the role carried by the verified token; the
// role inside any request body is ignored.
func SetupRouter(auctionHandler *handler.AuctionHandler, tokenMaker *auth.TokenMaker, hub *notifier.Hub, uploadDir string) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	router.POST("/auth/token", auctionHandler.AuthenticateHandler)
	router.Static("/static/uploads", uploadDir)

	authorized := router.Group("/", AuthMiddleware(tokenMaker))
	{
		authorized.GET("/events", auctionHandler.ListEventsHandler)
		authorized.GET("/ws", notifier.ServeWS(hub))
	}

	host := authorized.Group("/", RequireRole(models.RoleHost))
	{
		host.POST("/events", auctionHandler.CreateEventHandler)
		host.GET("/events/:event_id/export", auctionHandler.ExportEventHandler)
		host.PUT("/events/:event_id/increment", auctionHandler.SetMinIncrementHandler)
		host.PUT("/events/:event_id/current-lot", auctionHandler.SetCurrentLotHandler)
		host.POST("/events/:event_id/items", auctionHandler.CreateItemHandler)
		host.POST("/events/:event_id/items/:item_id/timer", auctionHandler.StartTimerHandler)
		host.DELETE("/events/:event_id/items/:item_id/timer", auctionHandler.StopTimerHandler)
		host.POST("/events/:event_id/items/:item_id/sold", auctionHandler.MarkSoldHandler)
		host.POST("/events/:event_id/items/:item_id/reopen", auctionHandler.ReopenHandler)
		host.POST("/uploads", auctionHandler.UploadHandler)
	}

	bidder := authorized.Group("/", RequireRole(models.RoleBidder))
	{
		bidder.POST("/events/:event_id/join", auctionHandler.JoinEventHandler)
		bidder.POST("/events/:event_id/items/:item_id/bids", auctionHandler.PlaceBidHandler)
		bidder.POST("/events/:event_id/items/:item_id/payment", auctionHandler.ConfirmPaymentHandler)
	}

	return router
}
