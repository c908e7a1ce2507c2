package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/ai/classifier"
	"github.com/aegisai/civicchain/src/api/config"
	"github.com/aegisai/civicchain/src/chain"
	"github.com/aegisai/civicchain/src/governance"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, ctrl *governance.Controller) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://civicchain.aegisai.city"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	var ledger *chain.Client
	if cfg.ChainEndpoint != "" {
		ledger = chain.NewClient(cfg.ChainEndpoint)
	}

	authH := NewAuth(rdb, []byte(cfg.JWTSecret), NewWalletVerifier(cfg.WalletVerifyURL))
	propH := NewProposals(db, rdb, ctrl, ledger)
	compH := NewComplaints(db, rdb, classifier.New(cfg.AIKey, cfg.AIEndpoint), ledger)
	eventH := NewEvents(db, rdb)
	volH := NewVolunteers(db)
	profH := NewProfile(db)

	limiter := NewRateLimiter(30, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		v1.GET("/proposals", propH.List)
		v1.GET("/proposals/:id", propH.Get)
		v1.GET("/proposals/:id/votes", propH.Summary)
		v1.GET("/events", eventH.List)
		v1.GET("/volunteers", volH.List)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(limiter))
		{
			secured.POST("/proposals", propH.Create)
			secured.POST("/proposals/:id/votes", propH.Cast)
			secured.POST("/proposals/:id/cancel", propH.Cancel)
			secured.POST("/complaints", compH.Create)
			secured.GET("/complaints", compH.List)
			secured.POST("/events", eventH.Create)
			secured.POST("/events/:id/rsvp", eventH.RSVP)
			secured.POST("/events/:id/chat", eventH.Chat)
			secured.POST("/volunteers", volH.Create)
			secured.POST("/volunteers/:id/signup", volH.Signup)
			secured.GET("/profile", profH.Get)
			secured.PUT("/profile", profH.Update)
		}
	}
}
