package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/platform/observability"
)

type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool             `json:"success"`
	Kind    domain.ErrorKind `json:"kind"`
	Error   string           `json:"error"`
}

func httpStatus(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidTransfer, domain.KindInvalidRequest, domain.KindWarehouseRequired,
		domain.KindInsufficientStock, domain.KindInvalidTransition:
		return http.StatusBadRequest
	case domain.KindSourceNotFound, domain.KindProductNotFound, domain.KindOrderNotFound:
		return http.StatusNotFound
	case domain.KindDuplicateRequest:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func grpcCode(kind domain.ErrorKind) codes.Code {
	switch kind {
	case domain.KindInvalidTransfer, domain.KindInvalidRequest:
		return codes.InvalidArgument
	case domain.KindWarehouseRequired, domain.KindInsufficientStock, domain.KindInvalidTransition:
		return codes.FailedPrecondition
	case domain.KindSourceNotFound, domain.KindProductNotFound, domain.KindOrderNotFound:
		return codes.NotFound
	case domain.KindDuplicateRequest:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// respondError writes the error envelope. Infrastructure failures are logged
// here and their details are not sent to the caller.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := domain.KindOf(err)
	status := httpStatus(kind)
	if status >= http.StatusInternalServerError {
		observability.LoggerFrom(c.Request.Context(), logger).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	c.JSON(status, ErrorResponse{Kind: kind, Error: domain.MessageOf(err)})
}

func respondInvalid(c *gin.Context, kind domain.ErrorKind, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Kind: kind, Error: err.Error()})
}
