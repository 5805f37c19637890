package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/buildvault/bimlibrary/internal/modules/serializer"
	"github.com/buildvault/bimlibrary/internal/modules/service"
)

type ViewSetHandler struct {
	svc service.ViewSetService
}

func NewViewSetHandler(svc service.ViewSetService) *ViewSetHandler {
	return &ViewSetHandler{svc: svc}
}

type CreateViewSetReq struct {
	Name      string   `json:"name" binding:"required"`
	ProjectID string   `json:"project_id" binding:"required,uuid"`
	AssetIDs  []string `json:"asset_ids" binding:"required,min=1,dive,uuid"`
}

// CreateViewSet godoc
//
//	@Summary		Create a federated set
//	@Description	Snapshot a named, ordered collection of asset ids under a project
//	@Tags			view-set
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateViewSetReq	true	"Set definition"
//	@Success		201	{object}	serializer.Response{data=model.ViewSet}
//	@Router			/view-sets [post]
func (h *ViewSetHandler) CreateViewSet(c *gin.Context) {
	var req CreateViewSetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	assetIDs := make([]uuid.UUID, 0, len(req.AssetIDs))
	for _, raw := range req.AssetIDs {
		assetIDs = append(assetIDs, uuid.MustParse(raw))
	}

	vs, err := h.svc.Create(c.Request.Context(), service.CreateViewSetInput{
		TenantID:  tenantFrom(c),
		ActorID:   actorFrom(c),
		ProjectID: uuid.MustParse(req.ProjectID),
		Name:      req.Name,
		AssetIDs:  assetIDs,
	})
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: vs})
}

// ListViewSets godoc
//
//	@Summary	List federated sets
//	@Tags		view-set
//	@Produce	json
//	@Success	200	{object}	serializer.Response{data=[]model.ViewSet}
//	@Router		/view-sets [get]
func (h *ViewSetHandler) ListViewSets(c *gin.Context) {
	sets, err := h.svc.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: sets})
}

// ResolveViewSet godoc
//
//	@Summary		Resolve a federated set
//	@Description	Return the set's current non-trashed members in snapshot order
//	@Tags			view-set
//	@Produce		json
//	@Param			set_id	path	string	true	"View set ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{data=[]model.Asset}
//	@Router			/view-sets/{set_id}/assets [get]
func (h *ViewSetHandler) ResolveViewSet(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("set_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	assets, err := h.svc.Resolve(c.Request.Context(), tenantFrom(c), setID)
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: assets})
}
