package webserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/api/data"
	"github.com/aegisai/civicchain/src/api/types"
	"github.com/aegisai/civicchain/src/chain"
	"github.com/aegisai/civicchain/src/governance"
)

type Proposals struct {
	db        *gorm.DB
	rdb       *redis.Client
	ctrl      *governance.Controller
	ledger    *chain.Client
	sanitizer *bluemonday.Policy
}

func NewProposals(db *gorm.DB, rdb *redis.Client, ctrl *governance.Controller, ledger *chain.Client) Proposals {
	return Proposals{db: db, rdb: rdb, ctrl: ctrl, ledger: ledger, sanitizer: newSanitizer()}
}

func (p Proposals) Create(c *gin.Context) {
	var req struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description" binding:"required"`
		Category    string    `json:"category" binding:"required"`
		QuorumVotes int       `json:"quorumVotes" binding:"required"`
		EndAt       time.Time `json:"endAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	prop, err := p.ctrl.CreateProposal(c, governance.CreateProposalInput{
		Title:       req.Title,
		Description: p.sanitizer.Sanitize(req.Description),
		Category:    req.Category,
		CreatorID:   c.GetString("addr"),
		QuorumVotes: req.QuorumVotes,
		EndAt:       req.EndAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	p.annotateReceipt(prop.ID)
	_ = data.PublishGovernance(c, p.rdb, map[string]interface{}{
		"kind": "proposal_created", "proposal": prop.ID, "creator": prop.CreatorID,
	})

	c.JSON(http.StatusCreated, prop)
}

func (p Proposals) List(c *gin.Context) {
	filter := governance.Filter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	props, err := p.ctrl.ListProposals(c, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	// settle anything that expired since the last sweep
	now := time.Now()
	for i := range props {
		if props[i].Status == types.StatusActive && !now.Before(props[i].EndAt) {
			settled, err := p.ctrl.EvaluateDeadline(c, props[i].ID)
			if err != nil {
				writeError(c, err)
				return
			}
			props[i] = *settled
		}
	}

	c.JSON(http.StatusOK, props)
}

func (p Proposals) Get(c *gin.Context) {
	prop, err := p.ctrl.GetProposal(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (p Proposals) Cast(c *gin.Context) {
	var req struct {
		Choice string `json:"choice" binding:"required,oneof=for against abstain"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	addr := c.GetString("addr")
	var member types.Member
	if err := p.db.FirstOrCreate(&member, types.Member{Address: addr}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	prop, err := p.ctrl.CastVote(c, c.Param("id"), addr, req.Choice, member.Reputation)
	if err != nil {
		writeError(c, err)
		return
	}

	_ = data.PublishGovernance(c, p.rdb, map[string]interface{}{
		"kind": "tally_updated", "proposal": prop.ID,
		"for": prop.VotesFor, "against": prop.VotesAgainst, "abstain": prop.VotesAbstain,
		"status": prop.Status,
	})

	c.JSON(http.StatusOK, prop)
}

func (p Proposals) Summary(c *gin.Context) {
	prop, err := p.ctrl.GetProposal(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"for":     prop.VotesFor,
		"against": prop.VotesAgainst,
		"abstain": prop.VotesAbstain,
		"support": prop.SupportPct,
		"status":  prop.Status,
	})
}

func (p Proposals) Cancel(c *gin.Context) {
	prop, err := p.ctrl.CancelProposal(c, c.Param("id"), c.GetString("addr"))
	if err != nil {
		writeError(c, err)
		return
	}

	_ = data.PublishGovernance(c, p.rdb, map[string]interface{}{
		"kind": "proposal_cancelled", "proposal": prop.ID,
	})

	c.JSON(http.StatusOK, prop)
}

// annotateReceipt anchors the proposal on the ledger in the background. The
// receipt is annotation only: a gateway failure is logged and forgotten.
func (p Proposals) annotateReceipt(id string) {
	if p.ledger == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		receipt, err := p.ledger.Submit(ctx, map[string]interface{}{"kind": "proposal", "id": id})
		if err != nil {
			log.Printf("chain receipt for proposal %s: %v", id, err)
			return
		}
		if err := p.db.Model(&types.Proposal{}).Where("id = ?", id).
			Update("tx_receipt", receipt).Error; err != nil {
			log.Printf("store receipt for proposal %s: %v", id, err)
		}
	}()
}
