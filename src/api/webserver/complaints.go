package webserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/ai/classifier"
	"github.com/aegisai/civicchain/src/api/data"
	"github.com/aegisai/civicchain/src/api/types"
	"github.com/aegisai/civicchain/src/chain"
)

const classifyBudget = 2 * time.Second

type Complaints struct {
	db        *gorm.DB
	rdb       *redis.Client
	ai        *classifier.Client
	ledger    *chain.Client
	sanitizer *bluemonday.Policy
}

func NewComplaints(db *gorm.DB, rdb *redis.Client, ai *classifier.Client, ledger *chain.Client) Complaints {
	return Complaints{db: db, rdb: rdb, ai: ai, ledger: ledger, sanitizer: newSanitizer()}
}

func (h Complaints) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Location    string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	creq := classifier.Request{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}

	// Classification must never block or fail intake: short budget, keyword
	// fallback on any error.
	ctx, cancel := context.WithTimeout(c, classifyBudget)
	defer cancel()
	cls, err := h.ai.Classify(ctx, creq)
	if err != nil {
		log.Printf("classifier degraded to fallback: %v", err)
		cls = classifier.Fallback(creq)
	}

	comp := types.Complaint{
		ID:          uuid.NewString(),
		Author:      c.GetString("addr"),
		Title:       req.Title,
		Description: h.sanitizer.Sanitize(req.Description),
		Location:    req.Location,
		Category:    cls.Category,
		Priority:    cls.Priority,
		Confidence:  cls.Confidence,
		Department:  cls.Department,
		IsEmergency: cls.IsEmergency,
		Status:      "open",
		CreatedAt:   time.Now(),
	}
	if err := h.db.Create(&comp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	h.annotateReceipt(comp.ID)
	_ = data.PublishGovernance(c, h.rdb, map[string]interface{}{
		"kind": "complaint_filed", "complaint": comp.ID,
		"category": comp.Category, "priority": comp.Priority,
		"emergency": comp.IsEmergency,
	})

	c.JSON(http.StatusCreated, comp)
}

func (h Complaints) List(c *gin.Context) {
	var out []types.Complaint
	err := h.db.Where("author = ?", c.GetString("addr")).
		Order("created_at DESC").Find(&out).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Complaints) annotateReceipt(id string) {
	if h.ledger == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		receipt, err := h.ledger.Submit(ctx, map[string]interface{}{"kind": "complaint", "id": id})
		if err != nil {
			log.Printf("chain receipt for complaint %s: %v", id, err)
			return
		}
		if err := h.db.Model(&types.Complaint{}).Where("id = ?", id).
			Update("tx_receipt", receipt).Error; err != nil {
			log.Printf("store receipt for complaint %s: %v", id, err)
		}
	}()
}
