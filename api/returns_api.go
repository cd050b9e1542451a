package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	api_model "github.com/reversa-app/reversa/api/model"
	"github.com/reversa-app/reversa/internal/apierror"
)

// CreateReturn registers a return case explicitly.
func (a Api) CreateReturn(c *gin.Context) {
	var req api_model.CreateReturn
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateCreateReturn(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.reversa.CreateReturn(c.Request.Context(), req.ToReturnRecord(), c.GetHeader("X-Actor"))
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// GetReturn fetches one return case by external order id.
func (a Api) GetReturn(c *gin.Context) {
	orderID, passed := c.Params.Get("order_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required. pass it in the route /:order_id"})
		return
	}

	rec, err := a.reversa.GetReturn(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetAllReturns lists return cases with limit/offset pagination.
func (a Api) GetAllReturns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := a.reversa.ListReturns(c.Request.Context(), limit, offset)
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetReturnEvents returns the ledger history of one return case.
func (a Api) GetReturnEvents(c *gin.Context) {
	orderID := c.Param("order_id")

	events, err := a.reversa.GetReturnEvents(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, events)
}

// UpdateReturnStatus applies an operational status change.
func (a Api) UpdateReturnStatus(c *gin.Context) {
	orderID := c.Param("order_id")

	var req api_model.UpdateReturnStatus
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateUpdateReturnStatus(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.reversa.UpdateReturnStatus(c.Request.Context(), orderID, req.Status, req.Actor)
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// AdvanceLogistics advances the logistics sub-status of one return case.
func (a Api) AdvanceLogistics(c *gin.Context) {
	orderID := c.Param("order_id")

	var req api_model.AdvanceLogistics
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.ValidateAdvanceLogistics(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.reversa.AdvanceLogistics(c.Request.Context(), orderID, req.Next, req.Actor)
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}
