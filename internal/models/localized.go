package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Localized is a bilingual {en, ar} string pair stored as a JSON column.
// Every user-visible text field carries both variants so neither language
// can be missing at the type level.
type Localized struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

func (l Localized) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Localized) Scan(value interface{}) error {
	if l == nil {
		return fmt.Errorf("models.Localized: Scan on nil pointer")
	}
	if value == nil {
		*l = Localized{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.Localized: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*l = Localized{}
		return nil
	}

	var pair Localized
	if err := json.Unmarshal([]byte(raw), &pair); err == nil {
		*l = pair
		return nil
	}

	// Legacy rows stored a bare string in the English column.
	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		*l = Localized{EN: single}
		return nil
	}

	*l = Localized{EN: raw}
	return nil
}

// IsEmpty reports whether both variants are blank.
func (l Localized) IsEmpty() bool {
	return strings.TrimSpace(l.EN) == "" && strings.TrimSpace(l.AR) == ""
}

// Pick returns the variant for lang ("ar" or anything else → "en"),
// falling back to the other variant when the requested one is blank.
func (l Localized) Pick(lang string) string {
	if strings.EqualFold(strings.TrimSpace(lang), "ar") {
		if strings.TrimSpace(l.AR) != "" {
			return l.AR
		}
		return l.EN
	}
	if strings.TrimSpace(l.EN) != "" {
		return l.EN
	}
	return l.AR
}

// StringArray stores string lists as JSON, tolerating legacy plain-string data.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}
	if value == nil {
		*a = []string{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*a = []string{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*a = arr
		return nil
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		if single == "" {
			*a = []string{}
		} else {
			*a = []string{single}
		}
		return nil
	}

	*a = []string{raw}
	return nil
}

// JSONMap is a free-form metadata bag stored as JSON.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if m == nil {
		return fmt.Errorf("models.JSONMap: Scan on nil pointer")
	}
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models.JSONMap: unsupported Scan type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*m = JSONMap{}
		return nil
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}
