package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"saldo/internal/core"
)

const maxBodyBytes = 1 << 16

// decodeJSON reads a size-limited JSON body into v. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: request body too large", core.ErrValidation)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty request body", core.ErrValidation)
		default:
			return fmt.Errorf("%w: malformed JSON: %v", core.ErrValidation, err)
		}
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}

// queryInt parses an integer query parameter within [lo, hi]. A missing
// parameter yields def.
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", core.ErrValidation, name, lo, hi)
	}
	return n, nil
}

type createTransactionRequest struct {
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	CategoryID int    `json:"categoryId"`
	Detail     string `json:"detail"`
}

type createTargetRequest struct {
	PresetID int    `json:"presetId"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Amount   string `json:"amount"`
}

func parseAmount(s string, exponent int32) (core.Money, error) {
	m, err := core.ParseMoney(s, exponent)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %w %q", core.ErrValidation, err, s)
	}
	return m, nil
}
