package drivererrors

import (
	"net/http"

	"go-courier/internal/shared/apperror"
)

var (
	ErrDriverNotFound = apperror.New(
		apperror.CodeNotFound,
		"driver not found",
		http.StatusNotFound,
	)

	ErrInvalidDriverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid driver id",
		http.StatusBadRequest,
	)

	ErrInvalidAdminID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid admin id",
		http.StatusBadRequest,
	)

	ErrInvalidVehicleShift = apperror.New(
		apperror.CodeInvalidInput,
		"unsupported vehicle type and shift combination",
		http.StatusBadRequest,
	)

	ErrPhoneAlreadyUsed = apperror.New(
		apperror.CodeConflict,
		"phone number already registered to another driver",
		http.StatusConflict,
	)
)
