package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/card-lifecycle/internal/application/usecase"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// codeFor maps application errors onto gRPC status codes.
func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, port.ErrCardNotFound):
		return codes.NotFound
	case errors.Is(err, valueobject.ErrInvalidTransition), errors.Is(err, model.ErrCardNotExpired):
		return codes.FailedPrecondition
	case errors.Is(err, valueobject.ErrUnsupportedCardType),
		errors.Is(err, model.ErrInvalidCardDetails),
		errors.Is(err, usecase.ErrInvalidRequest):
		return codes.InvalidArgument
	case errors.Is(err, port.ErrConflict), errors.Is(err, port.ErrDuplicateCardNumber):
		return codes.Aborted
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}

// toStatus converts err into a gRPC status. Internal errors are logged and
// replaced by a generic message.
func (h *CardServiceHandler) toStatus(ctx context.Context, op string, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		h.logger.ErrorContext(ctx, op+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	var te *valueobject.TransitionError
	if errors.As(err, &te) {
		return status.Error(code, te.Error())
	}
	return status.Error(code, err.Error())
}
