package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/events"
	"github.com/kasuganosora/friendsvc/store"
)

// SeedHandler fills the database with demo data.
type SeedHandler struct {
	st  *store.Store
	pub *events.Publisher
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(st *store.Store, pub *events.Publisher) *SeedHandler {
	return &SeedHandler{st: st, pub: pub}
}

// Populate handles PUT /populate. A second call fails on the seeded email.
func (h *SeedHandler) Populate(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.st.Populate(ctx); err != nil {
		abort(c, http.StatusInternalServerError, err, err.Error())
		return
	}
	h.pub.Publish(ctx, events.DBPopulated, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Database filled with test datas"})
}
