package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/takeaship/slack-remind-command-constructor/internal/builder"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/logger"
)

type handler struct {
	loc *time.Location
}

type pageData struct {
	Input    builder.Input
	Command  string
	Link     string
	Errors   map[string]string
	Warnings []string
}

func (h *handler) location() *time.Location {
	if h.loc == nil {
		return time.Local
	}
	return h.loc
}

func (h *handler) form(c *gin.Context) {
	in := builder.InputFromValues(c.Request.URL.Query())
	c.HTML(http.StatusOK, "index.html", pageData{
		Input: in,
		Link:  builder.BuildShareableLink(requestOrigin(c), c.Request.URL.Path, in.Recipient, in.Message, in.Datetime),
	})
}

func (h *handler) submit(c *gin.Context) {
	var in builder.Input
	if err := c.ShouldBind(&in); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	data := pageData{
		Input: in,
		Link:  builder.BuildShareableLink(requestOrigin(c), c.Request.URL.Path, in.Recipient, in.Message, in.Datetime),
	}

	if err := in.Validate(); err != nil {
		var missing *builder.MissingFieldsError
		if errors.As(err, &missing) {
			data.Errors = make(map[string]string, len(missing.Fields))
			for _, f := range missing.Fields {
				data.Errors[f] = f + " is required"
			}
		}
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	res := builder.BuildIn(in, requestOrigin(c), c.Request.URL.Path, h.location())
	data.Command = res.Command
	data.Warnings = res.Warnings()
	logger.FromContext(c.Request.Context()).Info("Command generated",
		slog.String("recipient", in.Recipient),
		slog.Bool("valid_date", res.ValidDate),
	)
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *handler) command(c *gin.Context) {
	in := builder.InputFromValues(c.Request.URL.Query())
	if err := in.Validate(); err != nil {
		var missing *builder.MissingFieldsError
		if errors.As(err, &missing) {
			errs := make([]ValidationError, 0, len(missing.Fields))
			for _, f := range missing.Fields {
				errs = append(errs, ValidationError{Field: f, Message: f + " is required"})
			}
			ValidationErrors(c, errs)
			return
		}
		BadRequest(c, err.Error())
		return
	}

	// The link points back at the form page, not at this endpoint.
	res := builder.BuildIn(in, requestOrigin(c), "/", h.location())
	OKWithWarnings(c, contract.ReminderResult{
		Input:     contract.ReminderInput{Recipient: in.Recipient, Message: in.Message, Datetime: in.Datetime},
		Formatted: res.Formatted,
		Command:   res.Command,
		Link:      res.Link,
		ValidDate: res.ValidDate,
	}, res.Warnings())
}

func (h *handler) health(c *gin.Context) {
	OK(c, "", gin.H{"status": "healthy"})
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
