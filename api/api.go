package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reversa-app/reversa"
)

type Api struct {
	reversa *reversa.Reversa
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/imports/returns", a.UploadReturns)
	router.GET("/imports/returns/template/:layout", a.GetImportTemplate)
	router.GET("/imports/returns/templates", a.ListImportTemplates)

	router.POST("/returns", a.CreateReturn)
	router.GET("/returns", a.GetAllReturns)
	router.GET("/returns/:order_id", a.GetReturn)
	router.GET("/returns/:order_id/events", a.GetReturnEvents)
	router.PUT("/returns/:order_id/status", a.UpdateReturnStatus)
	router.PUT("/returns/:order_id/logistics", a.AdvanceLogistics)

	return a.router
}

func NewAPI(r *reversa.Reversa) *Api {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{reversa: r, router: router}
}
