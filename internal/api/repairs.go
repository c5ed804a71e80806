package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/erazemk/logistika/internal/imaging"
	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/service"
)

// RepairsHandler handles repair request and under-repair endpoints.
type RepairsHandler struct {
	Engine *service.Engine
}

// maxPhotoBody bounds a request carrying a photo: the image plus room for
// multipart framing and form fields.
const maxPhotoBody = imaging.MaxUploadBytes + 1<<20

type repairStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Remark string `json:"remark"`
}

// List handles GET /api/repairs, optionally filtered by ?status=.
func (h *RepairsHandler) List(c *gin.Context) {
	list, err := h.Engine.ListRepairRequests(c.Request.Context(), actor(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []model.RepairRequest{}
	}
	c.JSON(http.StatusOK, list)
}

// Create handles POST /api/repairs. The body is either JSON, or a multipart
// form with location, description and priority fields and an optional
// photo file.
func (h *RepairsHandler) Create(c *gin.Context) {
	var (
		in    service.NewRepair
		photo io.Reader
	)

	if isMultipart(c) {
		if !parsePhotoForm(c) {
			return
		}
		in.Location = c.PostForm("location")
		in.Description = c.PostForm("description")
		in.Priority = c.PostForm("priority")

		if fh, err := c.FormFile("photo"); err == nil {
			f, err := fh.Open()
			if err != nil {
				jsonError(c, http.StatusBadRequest, codeBadRequest, "unreadable photo")
				return
			}
			defer f.Close()
			photo = f
		}
	} else if !bindJSON(c, &in) {
		return
	}

	r, err := h.Engine.CreateRepairRequest(c.Request.Context(), actor(c), in, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// Get handles GET /api/repairs/:id, including the under-repair item once
// the request is approved.
func (h *RepairsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.Engine.GetRepairDetail(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UploadPhoto handles PUT /api/repairs/:id/photo. The photo is the raw
// request body or the "photo" field of a multipart form.
func (h *RepairsHandler) UploadPhoto(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBody)

	var photo io.Reader = c.Request.Body
	if isMultipart(c) {
		if !parsePhotoForm(c) {
			return
		}
		fh, err := c.FormFile("photo")
		if err != nil {
			jsonError(c, http.StatusBadRequest, codeBadRequest, "photo file required")
			return
		}
		f, err := fh.Open()
		if err != nil {
			jsonError(c, http.StatusBadRequest, codeBadRequest, "unreadable photo")
			return
		}
		defer f.Close()
		photo = f
	}

	r, err := h.Engine.AttachRepairPhoto(c.Request.Context(), actor(c), id, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Assess handles PUT /api/repairs/:id/status.
func (h *RepairsHandler) Assess(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req repairStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "status required")
		return
	}

	out, err := h.Engine.AssessRepair(c.Request.Context(), actor(c), id, req.Status, req.Remark)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListUnderRepair handles GET /api/under-repair, optionally filtered by ?status=.
func (h *RepairsHandler) ListUnderRepair(c *gin.Context) {
	list, err := h.Engine.ListUnderRepairItems(c.Request.Context(), actor(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []model.UnderRepairItem{}
	}
	c.JSON(http.StatusOK, list)
}

// Advance handles PUT /api/under-repair/:id/status.
func (h *RepairsHandler) Advance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req repairStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "status required")
		return
	}

	item, err := h.Engine.AdvanceRepair(c.Request.Context(), actor(c), id, req.Status, req.Remark)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetPhoto handles GET /api/photos/:ref.
func (h *RepairsHandler) GetPhoto(c *gin.Context) {
	data, mime, err := h.Engine.GetPhoto(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.Data(http.StatusOK, mime, data)
}

// parsePhotoForm bounds the body and parses the multipart form, answering
// 400 when it is too large or malformed.
func parsePhotoForm(c *gin.Context) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBody)
	if err := c.Request.ParseMultipartForm(maxPhotoBody); err != nil {
		jsonError(c, http.StatusBadRequest, codeBadRequest, "photo too large or invalid multipart form")
		return false
	}
	return true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}
