package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buildvault/bimlibrary/internal/modules/serializer"
	"github.com/buildvault/bimlibrary/internal/modules/service"
)

type HierarchyHandler struct {
	svc service.HierarchyService
}

func NewHierarchyHandler(svc service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{svc: svc}
}

// GetHierarchy godoc
//
//	@Summary		Get the navigable model tree
//	@Description	Build the Company → Project → Discipline tree from a fresh catalog read, optionally filtered by a search term
//	@Tags			hierarchy
//	@Produce		json
//	@Param			search	query		string	false	"Case-insensitive label filter"
//	@Success		200	{object}	serializer.Response{data=[]service.Node}
//	@Router			/hierarchy [get]
func (h *HierarchyHandler) GetHierarchy(c *gin.Context) {
	tree, err := h.svc.Tree(c.Request.Context(), tenantFrom(c), c.Query("search"))
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: tree})
}
