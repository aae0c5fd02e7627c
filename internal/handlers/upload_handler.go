package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/storage"
)

// UploadFile handles POST /api/uploads
// It saves one file into the requested folder (default "media") and returns
// its URL, for forms that only carry image or document links.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	// 2. Pick the folder
	kind := storage.KindMedia
	if raw := c.PostForm("kind"); raw != "" {
		k, ok := storage.ParseKind(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "Invalid upload", "unknown kind "+raw)
			return
		}
		kind = k
	}

	// 3. Save and return the public URL
	url, err := h.Files.Save(file, kind)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// formFiles returns the files posted under field. Requests that are not
// multipart simply carry no files.
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

// saveFiles stores every file posted under field. On failure the files saved
// so far are removed again.
func (h *Handlers) saveFiles(c *gin.Context, field string, kind storage.Kind) ([]string, error) {
	files := formFiles(c, field)
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.Files.Save(fh, kind)
		if err != nil {
			h.Files.RemoveAll(urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// saveFile stores the first file posted under field; "" when there is none.
func (h *Handlers) saveFile(c *gin.Context, field string, kind storage.Kind) (string, error) {
	files := formFiles(c, field)
	if len(files) == 0 {
		return "", nil
	}
	return h.Files.Save(files[0], kind)
}
