package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/utils"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/validator"
)

// writeServiceError renders err as its AppError when one is wrapped inside,
// otherwise as an internal error with the given message
func writeServiceError(w http.ResponseWriter, err error, message string) {
	utils.WriteError(w, errors.From(err, message))
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response itself and reports whether the request may proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if errs := val.Validate(dst); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return false
	}
	return true
}

// scopeFromRequest builds the scope of the authenticated user, narrowed to
// the branch query parameter when present
func scopeFromRequest(r *http.Request, userID int64) usage.Scope {
	return usage.Scope{UserID: userID, BranchID: r.URL.Query().Get("branch")}
}
