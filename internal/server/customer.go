package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
)

type customerInformationRequest struct {
	CustomerID string `form:"customer_id" json:"customer_id" binding:"required"`
	Name       string `form:"name" json:"name"`
	Email      string `form:"email" json:"email" binding:"required,email"`
}

// CreateCustomerInformation handles the index page form and JSON clients.
func (s *Server) CreateCustomerInformation(c *gin.Context) {
	var req customerInformationRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("customer_id", resp.CustomerID)

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusCreated, gin.H{"data": resp})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Email string `form:"email"`
		Name  string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Email:     strings.TrimSpace(query.Email),
		Name:      strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
