package salaryerrors

import (
	"net/http"

	"go-courier/internal/shared/apperror"
)

var (
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
	ErrDriverNotFound = apperror.New(
		apperror.CodeNotFound,
		"driver not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"override amount must be a whole number of currency minor units",
		http.StatusBadRequest,
	)
	ErrPayoutNotFound = apperror.New(
		apperror.CodeNotFound,
		"payout not found",
		http.StatusNotFound,
	)
	ErrInvalidExportFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid export format, expected xlsx or csv",
		http.StatusBadRequest,
	)
	ErrSettlementInProgress = apperror.New(
		apperror.CodeConflict,
		"a settlement for this driver is already in progress",
		http.StatusConflict,
	)
)
