package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/events"
	"github.com/kasuganosora/friendsvc/store"
)

// ItemHandler handles item REST endpoints.
type ItemHandler struct {
	st  *store.Store
	pub *events.Publisher
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(st *store.Store, pub *events.Publisher) *ItemHandler {
	return &ItemHandler{st: st, pub: pub}
}

type createItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

// Create handles POST /items/ (no owner).
func (h *ItemHandler) Create(c *gin.Context) {
	h.create(c, nil)
}

// CreateForUser handles POST /users/:id/items/.
func (h *ItemHandler) CreateForUser(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badID(c, c.Param("id"))
		return
	}
	h.create(c, &id)
}

func (h *ItemHandler) create(c *gin.Context, ownerID *int64) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	}

	ctx := c.Request.Context()
	item, err := h.st.CreateItem(ctx, store.ItemCreate{Title: req.Title, Description: req.Description}, ownerID)
	var cerr *store.ConstraintError
	if errors.As(err, &cerr) {
		abort(c, http.StatusInternalServerError, err, cerr.Error())
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	h.pub.Publish(ctx, events.ItemCreated, item)
	c.JSON(http.StatusOK, item)
}

// List handles GET /items/?skip=&limit=.
func (h *ItemHandler) List(c *gin.Context) {
	var q windowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	}
	items, err := h.st.ListItems(c.Request.Context(), q.window())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
