package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aegisai/civicchain/src/api/data"
	"github.com/aegisai/civicchain/src/api/types"
)

type Events struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewEvents(db *gorm.DB, rdb *redis.Client) Events {
	return Events{db: db, rdb: rdb}
}

func (h Events) Create(c *gin.Context) {
	var req struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartAt     time.Time `json:"startAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	ev := types.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		CreatedBy:   c.GetString("addr"),
		StartAt:     req.StartAt,
		CreatedAt:   time.Now(),
	}
	if err := h.db.Create(&ev).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h Events) List(c *gin.Context) {
	var out []types.Event
	if err := h.db.Preload("RSVPs").Order("start_at ASC").Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// RSVP keeps one row per (event, member); changing your answer replaces it.
func (h Events) RSVP(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=going maybe declined"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var ev types.Event
	if err := h.db.First(&ev, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "event not found"})
		return
	}

	rsvp := types.EventRSVP{
		EventID:   ev.ID,
		Member:    c.GetString("addr"),
		Status:    req.Status,
		UpdatedAt: time.Now(),
	}
	if err := h.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rsvp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rsvp)
}

func (h Events) Chat(c *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var ev types.Event
	if err := h.db.First(&ev, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "event not found"})
		return
	}

	if err := data.PublishEventChat(c, h.rdb, ev.ID, c.GetString("addr"), req.Body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.Status(http.StatusCreated)
}
