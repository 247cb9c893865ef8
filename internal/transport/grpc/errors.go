package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salonbook/backend/internal/service/appointments"
)

// toStatus maps a service error onto a gRPC status and logs it at a level matching
// whose fault it is. Validation failures carry a BadRequest detail with one field
// violation per broken rule.
func toStatus(log *slog.Logger, err error, attrs ...any) error {
	var vErr *appointments.ValidationError
	switch {
	case errors.As(err, &vErr):
		code := codes.InvalidArgument
		if errors.Is(err, appointments.ErrScheduleConflict) {
			log.Info("schedule conflict", attrs...)
			code = codes.FailedPrecondition
		} else {
			log.Warn("invalid request", append(attrs, slog.Any("err", err))...)
		}
		return validationStatus(code, vErr)
	case errors.Is(err, appointments.ErrForbidden):
		log.Warn("permission denied", attrs...)
		return status.Error(codes.PermissionDenied, "You can only manage your own appointments.")
	case errors.Is(err, appointments.ErrNotFound):
		log.Info("appointment not found", attrs...)
		return status.Error(codes.NotFound, "appointment not found")
	case errors.Is(err, appointments.ErrConcurrencyConflict):
		log.Info("concurrent modification", attrs...)
		return status.Error(codes.Aborted, "The appointment was changed by someone else. Reload and try again.")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("deadline exceeded", attrs...)
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}
	log.Error("request failed", append(attrs, slog.Any("err", err))...)
	return status.Error(codes.Internal, "internal error")
}

func validationStatus(code codes.Code, vErr *appointments.ValidationError) error {
	st := status.New(code, vErr.Error())
	br := &errdetails.BadRequest{}
	for _, v := range vErr.Violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Message,
		})
	}
	detailed, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func invalidArgument(field, msg string) error {
	return validationStatus(codes.InvalidArgument, &appointments.ValidationError{
		Kind:       appointments.ErrInvalidInput,
		Violations: []appointments.Violation{{Field: field, Rule: "format", Message: msg}},
	})
}
