package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/events"
	"github.com/kasuganosora/friendsvc/store"
)

// FriendHandler handles friendship REST endpoints.
type FriendHandler struct {
	st  *store.Store
	pub *events.Publisher
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(st *store.Store, pub *events.Publisher) *FriendHandler {
	return &FriendHandler{st: st, pub: pub}
}

// Create handles POST /friends/new/?id_1=&id_2=.
// An existing pair and an unknown user both answer 500, as existing clients expect.
func (h *FriendHandler) Create(c *gin.Context) {
	id1, ok := parseID(c.Query("id_1"))
	if !ok {
		badID(c, c.Query("id_1"))
		return
	}
	id2, ok := parseID(c.Query("id_2"))
	if !ok {
		badID(c, c.Query("id_2"))
		return
	}

	ctx := c.Request.Context()
	f, err := h.st.CreateFriendship(ctx, id1, id2)
	var cerr *store.ConstraintError
	switch {
	case errors.Is(err, store.ErrInvalidPair):
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	case errors.Is(err, store.ErrDuplicate):
		abort(c, http.StatusInternalServerError, err, "This relation already exists.")
		return
	case errors.As(err, &cerr):
		abort(c, http.StatusInternalServerError, err, cerr.Error())
		return
	case err != nil:
		internalError(c, err)
		return
	}

	h.pub.Publish(ctx, events.FriendshipCreated, f)
	c.JSON(http.StatusOK, f)
}

// ListAll handles GET /friends/. Pairs are returned as stored.
func (h *FriendHandler) ListAll(c *gin.Context) {
	pairs, err := h.st.ListFriendships(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, pairs)
}

// ListOf handles GET /friends/:id.
func (h *FriendHandler) ListOf(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badID(c, c.Param("id"))
		return
	}
	users, err := h.st.ListFriendsOf(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserViews(users))
}
