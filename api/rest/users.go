package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/events"
	"github.com/kasuganosora/friendsvc/store"
)

// UserHandler handles user REST endpoints.
type UserHandler struct {
	st  *store.Store
	pub *events.Publisher
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(st *store.Store, pub *events.Publisher) *UserHandler {
	return &UserHandler{st: st, pub: pub}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// updateUserRequest leaves absent fields nil. Unknown keys such as
// hashed_password are rejected rather than silently dropped.
type updateUserRequest struct {
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

func (r updateUserRequest) toStore() store.UserUpdate {
	return store.UserUpdate{Email: r.Email, IsActive: r.IsActive, Password: r.Password}
}

// Create handles POST /users/.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	}

	ctx := c.Request.Context()
	_, err := h.st.GetUserByEmail(ctx, req.Email)
	if err == nil {
		abort(c, http.StatusBadRequest, store.ErrDuplicate, "Email already registered")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		internalError(c, err)
		return
	}

	u, err := h.st.CreateUser(ctx, store.UserCreate{Email: req.Email, Password: req.Password})
	if errors.Is(err, store.ErrDuplicate) {
		abort(c, http.StatusBadRequest, err, "Email already registered")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	view := newUserDetail(u, nil)
	h.pub.Publish(ctx, events.UserCreated, view.userView)
	c.JSON(http.StatusOK, view)
}

// List handles GET /users/?skip=&limit=.
func (h *UserHandler) List(c *gin.Context) {
	var q windowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	}
	users, err := h.st.ListUsers(c.Request.Context(), q.window())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserViews(users))
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badID(c, c.Param("id"))
		return
	}

	ctx := c.Request.Context()
	u, err := h.st.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, http.StatusNotFound, err, "User not found")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	friends, err := h.st.ListFriendsOf(ctx, id)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserDetail(u, friends))
}

// UpdatePartial handles PATCH /user/:id. Absent fields are left alone.
func (h *UserHandler) UpdatePartial(c *gin.Context) {
	h.update(c, h.st.UpdateUserPartial)
}

// Update handles PUT /user/:id. Absent fields are cleared.
func (h *UserHandler) Update(c *gin.Context) {
	h.update(c, h.st.UpdateUser)
}

func (h *UserHandler) update(c *gin.Context, apply func(context.Context, int64, store.UserUpdate) (string, error)) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badID(c, c.Param("id"))
		return
	}
	var req updateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	}

	ctx := c.Request.Context()
	msg, err := apply(ctx, id, req.toStore())
	var cerr *store.ConstraintError
	switch {
	case errors.Is(err, store.ErrNotFound):
		abort(c, http.StatusNotFound, err, "User not found")
		return
	case errors.Is(err, store.ErrDuplicate):
		abort(c, http.StatusBadRequest, err, "Email already registered")
		return
	case errors.As(err, &cerr):
		abort(c, http.StatusInternalServerError, err, cerr.Error())
		return
	case err != nil:
		internalError(c, err)
		return
	}

	h.pub.Publish(ctx, events.UserUpdated, gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Delete handles DELETE /user/delete/:id. An unknown id reports zero deletions.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badID(c, c.Param("id"))
		return
	}
	ctx := c.Request.Context()
	msg, err := h.st.DeleteUser(ctx, id)
	if err != nil {
		internalError(c, err)
		return
	}
	h.pub.Publish(ctx, events.UserDeleted, gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
