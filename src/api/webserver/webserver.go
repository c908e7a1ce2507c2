package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/api/config"
	"github.com/aegisai/civicchain/src/governance"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, ctrl *governance.Controller) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, ctrl)
	return g
}
