package metaobject

import (
	"strings"
	"time"
)

// Type is the attribute family a MetaObject belongs to.
type Type string

const (
	TypeColor    Type = "color"
	TypeSize     Type = "size"
	TypeMaterial Type = "material"
	TypeFabric   Type = "fabric"
)

// MetaObject is a schema-less attribute entry used to populate selector UIs.
// (Type, Code) is unique.
type MetaObject struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	IsActive  bool      `json:"isActive"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParseType normalizes raw into a known Type.
func ParseType(raw string) (Type, bool) {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeColor, TypeSize, TypeMaterial, TypeFabric:
		return t, true
	default:
		return "", false
	}
}

func validate(m *MetaObject) map[string]string {
	errs := map[string]string{}
	if t, ok := ParseType(string(m.Type)); !ok {
		errs["type"] = "type must be one of color, size, material, fabric"
	} else {
		m.Type = t
	}
	m.Code = strings.ToLower(strings.TrimSpace(m.Code))
	if m.Code == "" {
		errs["code"] = "code is required"
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		errs["name"] = "name is required"
	}
	if m.Type == TypeColor && m.Value == "" {
		if hex, ok := ColorHex(m.Name); ok {
			m.Value = hex
		}
	}
	return errs
}
