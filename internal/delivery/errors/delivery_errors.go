package deliveryerrors

import (
	"net/http"

	"go-courier/internal/shared/apperror"
)

var (
	ErrDeliveryNotFound = apperror.New(
		apperror.CodeNotFound,
		"delivery not found",
		http.StatusNotFound,
	)

	ErrInvalidDeliveryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid delivery id",
		http.StatusBadRequest,
	)

	ErrDriverNotEligible = apperror.New(
		apperror.CodeInvalidState,
		"driver cannot take this delivery: wrong vehicle or workload full",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid status filter",
		http.StatusBadRequest,
	)

	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid delivery status transition",
		http.StatusUnprocessableEntity,
	)

	ErrAlreadyAssigned = apperror.New(
		apperror.CodeConflict,
		"delivery is already assigned to a driver",
		http.StatusConflict,
	)

	ErrNotYourDelivery = apperror.New(
		apperror.CodeForbidden,
		"delivery is not assigned to you",
		http.StatusForbidden,
	)

	ErrEmptyUpload = apperror.New(
		apperror.CodeInvalidInput,
		"uploaded sheet contains no delivery rows",
		http.StatusBadRequest,
	)

	ErrMalformedUpload = apperror.New(
		apperror.CodeInvalidInput,
		"uploaded sheet could not be parsed",
		http.StatusBadRequest,
	)
)
