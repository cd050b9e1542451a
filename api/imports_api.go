package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/reversa-app/reversa"
	"github.com/reversa-app/reversa/config"
	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

// UploadReturns ingests a raw delimited-text export body. Options ride on
// the query string: dry (preview only), autocreate (stub unmatched orders),
// idemp_batch (whole-batch idempotency key). The filename hint comes from
// the X-File-Name header.
func (a Api) UploadReturns(c *gin.Context) {
	opts := model.ImportOptions{
		BatchKey: c.Query("idemp_batch"),
		FileName: c.GetHeader("X-File-Name"),
		Actor:    c.GetHeader("X-Actor"),
	}
	if v, ok := c.GetQuery("dry"); ok {
		opts.DryRun = parseBoolOption(v)
	}
	if v, ok := c.GetQuery("autocreate"); ok {
		opts.AutoCreate = parseBoolOption(v)
	} else if conf, err := config.Fetch(); err == nil {
		opts.AutoCreate = conf.Import.AutoCreateDefault
	}

	body := c.Request.Body
	if conf, err := config.Fetch(); err == nil && conf.Import.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, conf.Import.MaxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Failed to read upload body"})
		return
	}

	summary, err := a.reversa.ImportReturns(c.Request.Context(), string(raw), opts)
	if err != nil {
		logrus.Error(err)
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetImportTemplate returns the CSV skeleton for a named layout.
func (a Api) GetImportTemplate(c *gin.Context) {
	layout, passed := c.Params.Get("layout")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "layout is required. pass it in the route /:layout"})
		return
	}

	body, err := reversa.Template(layout)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+layout+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// ListImportTemplates lists the available layout names.
func (a Api) ListImportTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"layouts": reversa.TemplateLayouts()})
}

func parseBoolOption(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v == "sim" || v == "s" || v == "yes" || v == "on"
}
