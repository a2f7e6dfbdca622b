package ingest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"wikirelay/internal/event"
	"wikirelay/internal/logger"
	"wikirelay/internal/relay"
	"wikirelay/pkg/errors"
	"wikirelay/pkg/logging"
)

type BaseHandler struct {
	Relay  *relay.Service
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
}

func NewHandler(svc *relay.Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Relay:  svc,
			Logger: log,
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", h.SubmitEvent)
	}
}

// SubmitEvent accepts a single change event and runs it through the relay
// pipeline. Delivery is fire-and-forget, so a 202 means the event was
// accepted for processing, not that the webhook received it.
func (h *Handler) SubmitEvent(c *gin.Context) {
	var ev event.ChangeEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	if ev.Title == "" || ev.User == "" {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
			errors.ErrValidation.WithDetail("reason", "title and user are required")))
		return
	}

	ctx := logging.WithEventID(c.Request.Context(), strconv.FormatInt(ev.ID, 10))
	ctx = logging.WithWiki(ctx, ev.Wiki)

	if err := h.Relay.Notify(ctx, &ev); err != nil {
		h.HandleError(c, errors.ErrUnprocessable.WithCause(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
