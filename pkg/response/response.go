package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const InternalMessage = "Something went wrong, try again later"

// MessageBody is the shape of every non-data reply: {"message": "..."}.
type MessageBody struct {
	Message string `json:"message"`
}

// ValidationBody carries per-field errors next to the message.
type ValidationBody[E any] struct {
	Errors  []E    `json:"errors"`
	Message string `json:"message"`
}

func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, MessageBody{Message: message})
}

// Abort writes the message and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, MessageBody{Message: message})
}

func Invalid[E any](ctx *gin.Context, message string, errs []E) {
	if errs == nil {
		errs = []E{}
	}
	ctx.JSON(http.StatusBadRequest, ValidationBody[E]{Errors: errs, Message: message})
}

// Internal logs err with the request id and answers a generic 500; error
// details never reach the client.
func Internal(ctx *gin.Context, logger *logrus.Logger, err error) {
	if logger != nil {
		logger.WithError(err).
			WithField("request_id", ctx.GetString("request_id")).
			WithField("path", ctx.FullPath()).
			Error("request failed")
	}
	ctx.JSON(http.StatusInternalServerError, MessageBody{Message: InternalMessage})
}
