package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/store"
)

// BlobHandler stores and returns free-form JSON documents.
type BlobHandler struct {
	st *store.Store
}

// NewBlobHandler creates a new BlobHandler.
func NewBlobHandler(st *store.Store) *BlobHandler {
	return &BlobHandler{st: st}
}

type createBlobRequest struct {
	ID       *int64                 `json:"id" binding:"required"`
	TestJSON map[string]interface{} `json:"test_json" binding:"required"`
}

// Create handles POST /test/.
func (h *BlobHandler) Create(c *gin.Context) {
	var req createBlobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err, err.Error())
		return
	}

	ctx := c.Request.Context()
	blob, err := h.st.CreateJSONBlob(ctx, *req.ID, req.TestJSON)
	if errors.Is(err, store.ErrDuplicate) {
		abort(c, http.StatusBadRequest, err, "Id already registered")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, blob)
}

// Get handles GET /test/:id.
func (h *BlobHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badID(c, c.Param("id"))
		return
	}
	blob, err := h.st.GetJSONBlob(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		abort(c, http.StatusNotFound, err, "Json not found")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, blob)
}
