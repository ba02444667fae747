package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/registrar/internal/app/models/dto"
	"github.com/campushub/registrar/internal/pkg/apperrors"
)

// HandleAPIError maps service errors to HTTP responses. Controllers call it
// with whatever their service returned; the mapping lives in one place.
func HandleAPIError(c *gin.Context, err error) {
	detail := detailFor(err)
	if extra := apperrors.DetailsOf(err); extra != nil {
		detail.errorDetail = detail.errorDetail.WithDetails(extra)
	}
	c.JSON(detail.status, dto.NewErrorResponse(detail.errorDetail))
}

type mappedError struct {
	status      int
	errorDetail *dto.ErrorDetail
}

func detailFor(err error) mappedError {
	switch {
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return mappedError{http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Course not found")}
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return mappedError{http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found")}
	case errors.Is(err, apperrors.ErrRegistrationNotFound):
		return mappedError{http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Registration not found")}
	case errors.Is(err, apperrors.ErrUserNotFound):
		return mappedError{http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "User not found")}
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return mappedError{http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")}

	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeAlreadyRegistered, "Student already has an active registration for this course")}
	case errors.Is(err, apperrors.ErrAlreadyWaitlisted):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeAlreadyWaitlisted, "Student is already on the waitlist for this course")}
	case errors.Is(err, apperrors.ErrCourseCodeTaken):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Course code already exists")}
	case errors.Is(err, apperrors.ErrCourseHasRegistrations):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceInUse, "Course has active registrations and cannot be deleted")}
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")}
	case errors.Is(err, apperrors.ErrStudentIDAlreadyExists):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Student identifier already exists")}
	case errors.Is(err, apperrors.ErrSeatUpdateConflict):
		return mappedError{http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeSeatConflict, "Seat update conflicted with concurrent registrations, try again")}

	case errors.Is(err, apperrors.ErrPrerequisitesNotMet):
		return mappedError{http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodePrerequisitesNotMet, "Student has not completed all prerequisites")}
	case errors.Is(err, apperrors.ErrScheduleConflict):
		return mappedError{http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeScheduleConflict, "Time conflict with an already registered course")}

	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return mappedError{http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())}

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return mappedError{http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")}
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return mappedError{http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")}
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return mappedError{http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")}
	case errors.Is(err, apperrors.ErrTokenExpired):
		return mappedError{http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")}
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return mappedError{http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")}

	default:
		return mappedError{http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")}
	}
}
