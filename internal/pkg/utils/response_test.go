package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

func TestWriteSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteSuccessWithMessage(rr, http.StatusOK, "Settings updated", map[string]int{"units": 1500})

	var env map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env["success"] != true || env["message"] != "Settings updated" || env["data"] == nil {
		t.Errorf("unexpected envelope %v", env)
	}
	if _, ok := env["error"]; ok {
		t.Error("success envelope must not carry an error")
	}
}

func TestWriteError_HidesInternalError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, apperrors.DatabaseError("Failed to store bill", errors.New("disk I/O error at /var/lib")))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	var env struct {
		Success bool        `json:"success"`
		Error   ErrorDetail `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success || env.Error.Code != apperrors.ErrCodeDatabase || env.Error.Message != "Failed to store bill" {
		t.Errorf("unexpected envelope %+v", env)
	}
}
