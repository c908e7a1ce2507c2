package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/api/types"
)

type Profile struct{ db *gorm.DB }

func NewProfile(db *gorm.DB) Profile { return Profile{db: db} }

func (h Profile) Get(c *gin.Context) {
	var member types.Member
	if err := h.db.FirstOrCreate(&member, types.Member{Address: c.GetString("addr")}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, member)
}

// Update changes display name and email only. Reputation belongs to the
// identity service and is read-only here.
func (h Profile) Update(c *gin.Context) {
	var req struct {
		DisplayName string `json:"displayName"`
		Email       string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	addr := c.GetString("addr")
	var member types.Member
	if err := h.db.FirstOrCreate(&member, types.Member{Address: addr}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	err := h.db.Model(&member).Updates(map[string]interface{}{
		"display_name": req.DisplayName,
		"email":        req.Email,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	member.DisplayName = req.DisplayName
	member.Email = req.Email
	c.JSON(http.StatusOK, member)
}
