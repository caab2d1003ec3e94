package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
)

const indexPageSize = 20

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexPage struct {
	AppName   string
	Customers []customerdomain.Customer
	Bills     []billdomain.Bill
}

// Index serves the upload and customer forms with the latest records.
func (s *Server) Index(c *gin.Context) {
	ctx := c.Request.Context()

	customers, err := s.customerSvc.List(ctx, customerdomain.ListCustomerRequest{PageSize: indexPageSize})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	bills, err := s.billSvc.List(ctx, billdomain.ListBillRequest{PageSize: indexPageSize})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := indexTemplate.Execute(c.Writer, indexPage{
		AppName:   s.cfg.AppName,
		Customers: customers.Customers,
		Bills:     bills.Bills,
	}); err != nil {
		_ = c.Error(err)
	}
}
