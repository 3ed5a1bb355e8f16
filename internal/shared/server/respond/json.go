package respond

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Stream copies r to the response with the given content type. size may be
// -1 when unknown.
func Stream(c *gin.Context, status int, contentType string, size int64, r io.Reader) {
	c.DataFromReader(status, size, contentType, r, nil)
}

// Attachment streams r as a download named fileName.
func Attachment(c *gin.Context, contentType, fileName string, size int64, r io.Reader) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, size, contentType, r, map[string]string{
		"Content-Disposition": disposition,
	})
}
