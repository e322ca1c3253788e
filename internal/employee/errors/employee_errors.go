package employeeerrors

import (
	"go-payway/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists",
		http.StatusConflict,
	)
	ErrImageTooLarge = apperror.New(
		apperror.CodePayloadTooLarge,
		"Image exceeds the maximum upload size",
		http.StatusRequestEntityTooLarge,
	)
	ErrImageNotAnImage = apperror.New(
		apperror.CodeInvalidInput,
		"Uploaded file is not an image",
		http.StatusBadRequest,
	)
)
