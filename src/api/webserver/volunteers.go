package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aegisai/civicchain/src/api/types"
)

type Volunteers struct{ db *gorm.DB }

func NewVolunteers(db *gorm.DB) Volunteers { return Volunteers{db: db} }

func (h Volunteers) Create(c *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		Organization string `json:"organization"`
		SpotsTotal   int    `json:"spotsTotal" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	role := types.VolunteerRole{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Organization: req.Organization,
		SpotsTotal:   req.SpotsTotal,
		Open:         true,
		CreatedBy:    c.GetString("addr"),
		CreatedAt:    time.Now(),
	}
	if err := h.db.Create(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h Volunteers) List(c *gin.Context) {
	q := h.db.Model(&types.VolunteerRole{})
	if c.Query("open") == "true" {
		q = q.Where("open = ?", true)
	}
	var out []types.VolunteerRole
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Signup claims a spot with a guarded atomic increment; the filled count can
// never pass the total no matter how many claims race.
func (h Volunteers) Signup(c *gin.Context) {
	res := h.db.Model(&types.VolunteerRole{}).
		Where("id = ? AND open = ? AND spots_filled < spots_total", c.Param("id"), true).
		Update("spots_filled", gorm.Expr("spots_filled + 1"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"err": "role is full or closed"})
		return
	}

	// close the listing when the last spot goes
	h.db.Model(&types.VolunteerRole{}).
		Where("id = ? AND spots_filled >= spots_total", c.Param("id")).
		Update("open", false)

	c.Status(http.StatusNoContent)
}
