package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aegisai/civicchain/src/api/config"
	"github.com/aegisai/civicchain/src/api/data"
	"github.com/aegisai/civicchain/src/api/types"
	"github.com/aegisai/civicchain/src/api/webserver"
	"github.com/aegisai/civicchain/src/governance"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&types.Member{},
	&types.Proposal{}, &types.Vote{},
	&types.Complaint{},
	&types.Event{}, &types.EventRSVP{},
	&types.VolunteerRole{},
}

func migrate(db *gorm.DB) {
	err := db.AutoMigrate(allModels...)

	if err == nil {
		return
	}

	log.Printf("auto-migrate failed (%v) - dropping & recreating schema", err)
	_ = db.Migrator().DropTable(
		"event_rsvps", "events", "volunteer_roles",
		"complaints", "votes", "proposals", "members",
	)
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate after drop: %v", err)
	}
}

// sweepDeadlines settles expired proposals in the background so statuses
// move even when nobody is reading them.
func sweepDeadlines(ctx context.Context, ctrl *governance.Controller, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ctrl.SweepDeadlines(ctx)
			if err != nil {
				log.Printf("deadline sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("deadline sweep settled %d proposal(s)", n)
			}
		}
	}
}

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("missing env JWT_SECRET")
	}

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

	rdb := data.MustRedis(cfg.RedisURL)

	store := governance.NewGormStore(db)
	ctrl := governance.NewController(store, store)

	ctx, cancel := context.WithCancel(context.Background())
	go sweepDeadlines(ctx, ctrl, time.Duration(cfg.SweepInterval)*time.Second)

	router := webserver.New(cfg, db, rdb, ctrl)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("CivicChain API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
