package validation

import (
	"encoding/json"
	"net/http"
	"strings"

	"assetgraph/internal/errors"
)

type Validator interface {
	Validate() error
}

// DecodeRequest decodes the JSON body of r into v and validates it.
func DecodeRequest(r *http.Request, v Validator) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.ValidationError("invalid request body", nil)
	}
	return v.Validate()
}

// LoadPath rejects load paths that climb out of the asset directory.
func LoadPath(p string) error {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return errors.ValidationError("load path must stay inside the asset directory", map[string]string{"path": p})
		}
	}
	return nil
}

// Target rejects target names with surrounding whitespace.
func Target(t string) error {
	if strings.TrimSpace(t) != t {
		return errors.ValidationError("target must not have surrounding whitespace", map[string]string{"target": t})
	}
	return nil
}
