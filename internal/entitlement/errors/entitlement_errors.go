package entitlementerrors

import (
	"net/http"

	"go-peoplehub/internal/shared/apperror"
)

var (
	ErrInvalidTenantID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid tenant id",
		http.StatusBadRequest,
	)
	ErrTenantNotFound = apperror.New(
		apperror.CodeNotFound,
		"tenant not found",
		http.StatusNotFound,
	)
)
