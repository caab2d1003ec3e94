package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	ingestdomain "github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
)

// UploadCSV runs a meter export through the ingest pipeline. The status
// reflects the bill outcome: 201 created, 200 already existed, 404 unknown
// customer. The typed result is returned in every case.
func (s *Server) UploadCSV(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			AbortWithError(c, err)
			return
		}
		AbortWithError(c, newValidationError("file", "required", "file is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	result, err := s.ingestSvc.Upload(c.Request.Context(), ingestdomain.UploadRequest{
		Filename: fh.Filename,
		Body:     f,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("customer_id", result.CustomerID)

	c.JSON(uploadStatus(result.BillOutcome), gin.H{"data": result})
}

func uploadStatus(outcome billdomain.Outcome) int {
	switch outcome {
	case billdomain.OutcomeCreated:
		return http.StatusCreated
	case billdomain.OutcomeCustomerNotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

func (s *Server) ListUploads(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.ingestSvc.List(c.Request.Context(), ingestdomain.ListUploadRequest{
		CustomerID: query.CustomerID,
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
