package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buildvault/bimlibrary/internal/modules/serializer"
	"github.com/buildvault/bimlibrary/internal/modules/service"
	"github.com/buildvault/bimlibrary/internal/pkg/logger"
)

type AssetHandler struct {
	uploads service.UploadService
	assets  service.AssetService
}

func NewAssetHandler(uploads service.UploadService, assets service.AssetService) *AssetHandler {
	return &AssetHandler{uploads: uploads, assets: assets}
}

type CreateAssetReq struct {
	ProjectID    string `form:"project_id" binding:"required,uuid"`
	DisciplineID string `form:"discipline_id" binding:"required,uuid"`
	DisplayName  string `form:"display_name" binding:"required,modelname"`
}

// CreateAsset godoc
//
//	@Summary		Upload a new model
//	@Description	Store a CAD/BIM binary, submit it for translation and catalog it
//	@Tags			asset
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			project_id		formData	string	true	"Project ID"	Format(uuid)
//	@Param			discipline_id	formData	string	true	"Discipline ID"	Format(uuid)
//	@Param			display_name	formData	string	true	"Model display name"
//	@Param			file			formData	file	true	"Model binary"
//	@Success		201	{object}	serializer.Response{data=model.Asset}
//	@Router			/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	log := logger.FromGin(c)

	var req CreateAssetReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}

	asset, err := h.uploads.Create(c.Request.Context(), service.CreateInput{
		TenantID:     tenantFrom(c),
		ActorID:      actorFrom(c),
		ProjectID:    uuid.MustParse(req.ProjectID),
		DisciplineID: uuid.MustParse(req.DisciplineID),
		DisplayName:  req.DisplayName,
		File:         file,
	})
	if err != nil {
		log.Error("asset upload failed", zap.Error(err))
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: asset})
}

// CreateVersion godoc
//
//	@Summary		Upload a new version of an existing model
//	@Description	Replace an asset's binary, translation handle and bump its version
//	@Tags			asset
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			asset_id	path		string	true	"Asset ID"	Format(uuid)
//	@Param			file		formData	file	true	"Model binary"
//	@Success		200	{object}	serializer.Response{data=model.Asset}
//	@Router			/assets/{asset_id}/versions [post]
func (h *AssetHandler) CreateVersion(c *gin.Context) {
	log := logger.FromGin(c)

	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}

	asset, err := h.uploads.BumpVersion(c.Request.Context(), service.VersionInput{
		TenantID: tenantFrom(c),
		ActorID:  actorFrom(c),
		AssetID:  assetID,
		File:     file,
	})
	if err != nil {
		log.Error("version upload failed",
			zap.String("asset_id", assetID.String()),
			zap.Error(err))
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: asset})
}

type RetryPersistReq struct {
	StashKey string `json:"stash_key" binding:"required"`
}

// RetryPersist godoc
//
//	@Summary		Retry a failed catalog write
//	@Description	Rerun only the persist phase of an upload whose blob and translation handle were already obtained
//	@Tags			asset
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RetryPersistReq	true	"Stash key returned by the failed upload"
//	@Success		201	{object}	serializer.Response{data=model.Asset}
//	@Router			/assets/persist-retry [post]
func (h *AssetHandler) RetryPersist(c *gin.Context) {
	var req RetryPersistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	asset, err := h.uploads.RetryPersist(c.Request.Context(), tenantFrom(c), actorFrom(c), req.StashKey)
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: asset})
}

type MoveAssetReq struct {
	ProjectID    *string `json:"project_id" binding:"omitempty,uuid"`
	DisciplineID *string `json:"discipline_id" binding:"omitempty,uuid"`
}

// MoveAsset godoc
//
//	@Summary		Move a model
//	@Description	Relocate an asset to another project and/or discipline
//	@Tags			asset
//	@Accept			json
//	@Produce		json
//	@Param			asset_id	path	string			true	"Asset ID"	Format(uuid)
//	@Param			body		body	MoveAssetReq	true	"Move targets"
//	@Success		200	{object}	serializer.Response{data=model.Asset}
//	@Router			/assets/{asset_id}/location [patch]
func (h *AssetHandler) MoveAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	var req MoveAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.MoveInput{
		TenantID: tenantFrom(c),
		ActorID:  actorFrom(c),
		AssetID:  assetID,
	}
	if req.ProjectID != nil {
		id := uuid.MustParse(*req.ProjectID)
		in.ProjectID = &id
	}
	if req.DisciplineID != nil {
		id := uuid.MustParse(*req.DisciplineID)
		in.DisciplineID = &id
	}

	asset, err := h.assets.Move(c.Request.Context(), in)
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: asset})
}

// DeleteAsset godoc
//
//	@Summary		Trash a model
//	@Description	Soft-delete an asset; the row and any view sets referencing it persist
//	@Tags			asset
//	@Produce		json
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{}
//	@Router			/assets/{asset_id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.assets.SoftDelete(c.Request.Context(), tenantFrom(c), actorFrom(c), assetID); err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

// RestoreAsset godoc
//
//	@Summary		Restore a trashed model
//	@Description	Clear the trash flag, reinstating the asset at its original location
//	@Tags			asset
//	@Produce		json
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{}
//	@Router			/assets/{asset_id}/restore [post]
func (h *AssetHandler) RestoreAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.assets.Restore(c.Request.Context(), tenantFrom(c), actorFrom(c), assetID); err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

// DownloadAsset godoc
//
//	@Summary		Get a download URL
//	@Description	Return a presigned GET URL for the asset's current binary
//	@Tags			asset
//	@Produce		json
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{data=string}
//	@Router			/assets/{asset_id}/download [get]
func (h *AssetHandler) DownloadAsset(c *gin.Context) {
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	url, err := h.uploads.DownloadURL(c.Request.Context(), tenantFrom(c), assetID, 15*time.Minute)
	if err != nil {
		c.JSON(serializer.Err(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: url})
}
