package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nakmuayhub/platform/internal/upload"
	"go.uber.org/zap"
)

// Uploads larger than this are rejected before sniffing.
const maxUploadBody = 10 << 20

// HandleUploadValidate sniffs a multipart upload and rejects content
// whose bytes disagree with the claimed filename. Clients call this
// before committing a file to storage; nothing is persisted here.
func (s *Server) HandleUploadValidate(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if header.Size > maxUploadBody {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBody))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	contentType, err := upload.Validate(header.Filename, data)
	if err != nil {
		s.log.Warn("upload rejected",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"content_type": contentType,
		"size":         header.Size,
	})
}
