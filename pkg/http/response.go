package http

import (
	"encoding/json"
	"net/http"

	apperrors "reservio/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data   any   `json:"data"`
	Count  int64 `json:"count"`
	Limit  int   `json:"limit"`
	Offset int64 `json:"offset"`
}

type DeletedResponse struct {
	Success bool `json:"success"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders any error as the JSON error envelope. The status comes
// from the AppError itself; unknown errors become opaque 500s.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	resp := ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal && appErr.Err != nil {
		resp.Error = appErr.Error()
	}

	return WriteJSON(w, appErr.StatusCode(), resp)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteDeleted(w http.ResponseWriter) error {
	return WriteJSON(w, http.StatusOK, DeletedResponse{Success: true})
}

func WritePaginated(w http.ResponseWriter, data any, count int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Data:   data,
		Count:  count,
		Limit:  limit,
		Offset: offset,
	})
}
