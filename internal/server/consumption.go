package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	consumptiondomain "github.com/smallbiznis/voltbill/internal/consumption/domain"
)

type createConsumptionRequest struct {
	CustomerID  string    `json:"customer_id" binding:"required"`
	Timestamp   time.Time `json:"timestamp" binding:"required"`
	Consumption *float64  `json:"consumption" binding:"required"`
	Price       *float64  `json:"price" binding:"required"`
}

func (s *Server) CreateConsumption(c *gin.Context) {
	var req createConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.consumptionSvc.Create(c.Request.Context(), consumptiondomain.CreateRequest{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		Timestamp:   req.Timestamp,
		Consumption: *req.Consumption,
		Price:       *req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("customer_id", resp.CustomerID)

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListConsumptions(c *gin.Context) {
	var query struct {
		CustomerID string `form:"customer_id" binding:"required"`
		From       string `form:"from"`
		To         string `form:"to"`
		Limit      int    `form:"limit" binding:"gte=0,lte=5000"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	records, err := s.consumptionSvc.List(c.Request.Context(), consumptiondomain.ListRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		From:       from,
		To:         to,
		Limit:      query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
