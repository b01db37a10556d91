package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 << 20 // 10MB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadHandler struct {
	Uploader utils.ImageUploader
}

func NewUploadHandler(uploader utils.ImageUploader) *UploadHandler {
	return &UploadHandler{Uploader: uploader}
}

// UploadImage handles POST /api/v1/admin/upload. The admin guard has already run;
// it validates size and content type before streaming to image storage.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	// 1. Storage must be configured
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse(utils.ErrUploaderDisabled.Error()))
		return
	}

	// 2. Check the Weight (Size Limit: 10MB)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	// 3. Grab the Package
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("No file provided or file too large (Max 10MB)"))
		return
	}
	defer file.Close()

	// 4. Scan the Contents (Magic Number Validation)
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}

	contentType := http.DetectContentType(buffer[:n])
	fallbackExt, ok := allowedImageTypes[contentType]
	if !ok {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Unsupported file type. Please upload JPG, PNG, WEBP, or GIF"))
		return
	}

	// 5. Rename the Original
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = fallbackExt
	}
	safeFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	// 6. Ship to Storage
	imageURL, err := h.Uploader.Upload(c.Request.Context(), file, safeFilename)
	if err != nil {
		logrus.WithError(err).WithField("file", safeFilename).Error("Image upload failed")
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Image upload failed"))
		return
	}

	// 7. Send the Receipt
	c.JSON(http.StatusOK, utils.SuccessResponse("Image uploaded successfully", gin.H{
		"url":  imageURL,
		"size": header.Size,
		"type": contentType,
	}))
}
