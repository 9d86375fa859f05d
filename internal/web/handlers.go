package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	errs "twfollowers/pkg/errors"
	"twfollowers/pkg/followers"
	"twfollowers/pkg/logger"
)

// Service is what the handlers need from the followers service
type Service interface {
	Submit(ctx context.Context, username string) (*followers.SubmissionResult, error)
	BuildReport(ctx context.Context) (*followers.Report, error)
}

// Controller serves the submission form and the report
type Controller struct {
	svc    Service
	logger logger.Logger
}

func NewController(svc Service, log logger.Logger) *Controller {
	return &Controller{svc: svc, logger: log}
}

// RegisterRoutes answers every method on both routes and dispatches inside
func (c *Controller) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Any("/", c.handleIndex)
	rg.Any("/followers/", c.handleFollowers)
}

func (c *Controller) handleIndex(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		ctx.HTML(http.StatusOK, "home.html", gin.H{})
		return
	}

	result, err := c.svc.Submit(ctx.Request.Context(), ctx.PostForm("username"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	c.logger.InfoWithFields("Follower list stored", map[string]interface{}{
		"username":   result.Username,
		"stored":     len(result.Followers),
		"request_id": ctx.GetString(requestIDKey),
	})
	ctx.Redirect(http.StatusFound, "/followers/")
}

func (c *Controller) handleFollowers(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodGet {
		ctx.HTML(http.StatusOK, "followers.html", gin.H{})
		return
	}

	report, err := c.svc.BuildReport(ctx.Request.Context())
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "followers.html", gin.H{
		"Entries":      report.Entries,
		"ErrorMessage": report.ErrorMessage(),
		"GeneratedAt":  report.GeneratedAt,
	})
}

// writeError answers with the user facing message as plain text
func (c *Controller) writeError(ctx *gin.Context, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		c.logger.WithError(err).Error("Unhandled error")
		ctx.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	status := errs.HTTPStatus(e.Type)
	if status >= http.StatusInternalServerError {
		c.logger.WithError(err).WithField("request_id", ctx.GetString(requestIDKey)).Error("Request failed")
	}
	ctx.String(status, e.Message)
}
