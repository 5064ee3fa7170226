// Package rest exposes the store over HTTP.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/kasuganosora/friendsvc/events"
	"github.com/kasuganosora/friendsvc/store"
)

// Handlers bundles every REST handler.
type Handlers struct {
	Users   *UserHandler
	Items   *ItemHandler
	Friends *FriendHandler
	Blobs   *BlobHandler
	Seed    *SeedHandler
}

// NewHandlers creates all handlers over one store. pub may be nil.
func NewHandlers(st *store.Store, pub *events.Publisher) *Handlers {
	return &Handlers{
		Users:   NewUserHandler(st, pub),
		Items:   NewItemHandler(st, pub),
		Friends: NewFriendHandler(st, pub),
		Blobs:   NewBlobHandler(st),
		Seed:    NewSeedHandler(st, pub),
	}
}

// Register mounts the routes. populateMW guards PUT /populate.
func Register(r gin.IRouter, h *Handlers, populateMW ...gin.HandlerFunc) {
	r.POST("/users/", h.Users.Create)
	r.GET("/users/", h.Users.List)
	r.GET("/users/:id", h.Users.Get)
	r.PATCH("/user/:id", h.Users.UpdatePartial)
	r.PUT("/user/:id", h.Users.Update)
	r.DELETE("/user/delete/:id", h.Users.Delete)
	r.POST("/users/:id/items/", h.Items.CreateForUser)

	r.POST("/items/", h.Items.Create)
	r.GET("/items/", h.Items.List)

	r.POST("/friends/new/", h.Friends.Create)
	r.GET("/friends/", h.Friends.ListAll)
	r.GET("/friends/:id", h.Friends.ListOf)

	r.POST("/test/", h.Blobs.Create)
	r.GET("/test/:id", h.Blobs.Get)

	r.PUT("/populate", append(populateMW, h.Seed.Populate)...)
}

type windowQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=0"`
}

func (q windowQuery) window() store.Window {
	return store.Window{Skip: q.Skip, Limit: q.Limit}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

// abort records err on the context for the logger and audit middleware and
// writes the error body.
func abort(c *gin.Context, status int, err error, detail string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": detail})
}

func internalError(c *gin.Context, err error) {
	abort(c, http.StatusInternalServerError, err, "internal error")
}

func badID(c *gin.Context, raw string) {
	abort(c, http.StatusBadRequest, errors.New("invalid id "+strconv.Quote(raw)), "invalid id")
}

// bindStrictJSON decodes the body like ShouldBindJSON but rejects keys the
// request type does not declare.
func bindStrictJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return errors.New("missing request body")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
