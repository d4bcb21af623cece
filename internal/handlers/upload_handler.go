package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/2nas159/car-rental-app/internal/middleware"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type UploadHandler struct {
	storage storage.StorageProvider
}

func NewUploadHandler(provider storage.StorageProvider) *UploadHandler {
	return &UploadHandler{storage: provider}
}

// UploadImage stores a car image and returns its URL. The file lands under a
// fresh key so uploads never collide or overwrite each other.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required")
		return
	}
	if fileHeader.Size > utils.MaxImageSize {
		utils.BadRequestResponse(c, "Image exceeds the maximum allowed size")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedImageExtensions[ext]
	if !ok {
		utils.BadRequestResponse(c, "Unsupported image type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}
	defer file.Close()

	key := fmt.Sprintf("cars/%s/%s%s", userID.Hex(), uuid.NewString(), ext)
	response, err := h.storage.Upload(c.Request.Context(), &storage.UploadRequest{
		Key:         key,
		Reader:      file,
		ContentType: contentType,
		Size:        fileHeader.Size,
	})
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Image uploaded successfully", response)
}
