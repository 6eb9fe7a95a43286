package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Every response carries {"success": bool, "message": string, ...payload},
// matching what the frontend toasts expect.

func respond(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, status int, success bool, message string) {
	respond(w, status, map[string]interface{}{
		"success": success,
		"message": message,
	})
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Usernames: letters, digits and underscores only; length is enforced
	// with the standard min/max tags.
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// decodeValid decodes a JSON body into dst and runs struct validation.
func decodeValid(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}
