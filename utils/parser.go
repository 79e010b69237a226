package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/paylink/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// ValidateStruct runs the struct-tag validation shared by every package.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

// ValidateEmail checks that email is a well-formed address.
func ValidateEmail(email string) error {
	return validate.Var(email, "required,email")
}

// ParseCustomFields decodes the customFields value of a link. The value may
// be a JSON array or a JSON string that itself encodes an array. Malformed
// input yields an empty list together with the decode error, which callers
// log and otherwise ignore.
func ParseCustomFields(raw json.RawMessage) ([]types.CustomFieldDef, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []types.CustomFieldDef{}, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return []types.CustomFieldDef{}, fmt.Errorf("decode custom fields string: %w", err)
		}
		raw = []byte(strings.TrimSpace(encoded))
		if len(raw) == 0 {
			return []types.CustomFieldDef{}, nil
		}
	}

	var defs []types.CustomFieldDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return []types.CustomFieldDef{}, fmt.Errorf("decode custom fields: %w", err)
	}

	return normalizeFields(defs), nil
}

// normalizeFields drops nameless and duplicate entries, maps unknown kinds to
// text and strips options from non-select fields.
func normalizeFields(defs []types.CustomFieldDef) []types.CustomFieldDef {
	out := make([]types.CustomFieldDef, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))

	for _, d := range defs {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			continue
		}
		if _, dup := seen[d.Name]; dup {
			continue
		}
		seen[d.Name] = struct{}{}

		switch d.Kind {
		case types.FieldText, types.FieldTextarea, types.FieldSelect:
		default:
			d.Kind = types.FieldText
		}
		if d.Kind != types.FieldSelect {
			d.Options = nil
		}

		out = append(out, d)
	}

	return out
}
