package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	reportdomain "github.com/smallbiznis/voltbill/internal/report/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
)

func (s *Server) ListBills(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.billSvc.List(c.Request.Context(), billdomain.ListBillRequest{
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

func (s *Server) DownloadBillPDF(c *gin.Context) {
	report, err := s.reportSvc.RenderBill(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeReport(c, report)
}

func (s *Server) PreviewBill(c *gin.Context) {
	html, err := s.reportSvc.Preview(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// RenderFile renders a report from the posted bill values.
func (s *Server) RenderFile(c *gin.Context) {
	var req reportdomain.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	report, err := s.reportSvc.Render(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("customer_id", req.CustomerID)
	writeReport(c, report)
}

func writeReport(c *gin.Context, report reportdomain.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
