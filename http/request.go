package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sagarc03/quire"
)

const maxJSONBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a JSON request body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body", quire.ErrInvalidInput)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("%w: missing or invalid fields: %s", quire.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("validate body: %w", err)
	}

	return nil
}
