package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/inventory_backend/utils"
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func uploadRoot() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads/product_images"
	}
	return dir
}

// saveProductImage stores an optional "image" form file under the upload
// directory and returns the stored path relative to the upload root.
// Returns "" when the request carries no image.
func saveProductImage(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return "", utils.NewValidationError("unsupported image type")
	}

	dir := uploadRoot()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.NewString() + ext
	dst := filepath.Join(dir, filename)

	// Animated gifs would lose frames through a decode/encode round trip,
	// so they are stored as uploaded.
	if ext == ".gif" {
		if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
			return "", err
		}
		return filename, nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", utils.NewValidationError("unsupported image type")
	}

	thumb := imaging.Resize(img, 256, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, dst); err != nil {
		return "", err
	}
	return filename, nil
}
