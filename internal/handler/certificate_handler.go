package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukundo0023/empowerhered-sub000/internal/service"
	"github.com/rukundo0023/empowerhered-sub000/pkg/response"
)

type certificateOpener interface {
	Open(ctx context.Context, token string) (*service.CertificateFile, error)
}

// CertificateHandler streams certificates behind signed links.
type CertificateHandler struct {
	service certificateOpener
}

// NewCertificateHandler constructs a CertificateHandler.
func NewCertificateHandler(svc certificateOpener) *CertificateHandler {
	return &CertificateHandler{service: svc}
}

// Download godoc
// @Summary Download a certificate
// @Tags Certificates
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /certificates/download/{token} [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close()

	c.DataFromReader(http.StatusOK, file.Size, "application/pdf", file.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Name),
		"Cache-Control":       "private, no-store",
	})
}
