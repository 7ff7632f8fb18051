// Package model describes synthetic dataset shapes: models made of typed fields.
package model

import (
	"fmt"
	"strings"
)

// SemanticType is the logical kind of value a field holds.
type SemanticType int

const (
	// TypeUnsupported marks a type name the generator does not know.
	// Fields of this type are rendered as empty strings.
	TypeUnsupported SemanticType = iota
	TypeIdentifier
	TypePersonName
	TypeEmail
	TypeInteger
	TypeFloat
	TypeString
	TypeBoolean
	TypeDate
	TypeDatetime
	TypeCategory

	// NumSemanticTypes is the number of members in the enum.
	NumSemanticTypes
)

var typeNames = [NumSemanticTypes]string{
	TypeUnsupported: "unsupported",
	TypeIdentifier:  "uuid",
	TypePersonName:  "name",
	TypeEmail:       "email",
	TypeInteger:     "integer",
	TypeFloat:       "float",
	TypeString:      "string",
	TypeBoolean:     "boolean",
	TypeDate:        "date",
	TypeDatetime:    "datetime",
	TypeCategory:    "category",
}

// typeAliases maps every accepted spelling to its semantic type.
var typeAliases = map[string]SemanticType{
	"uuid":        TypeIdentifier,
	"identifier":  TypeIdentifier,
	"id":          TypeIdentifier,
	"name":        TypePersonName,
	"person-name": TypePersonName,
	"person_name": TypePersonName,
	"email":       TypeEmail,
	"integer":     TypeInteger,
	"int":         TypeInteger,
	"float":       TypeFloat,
	"double":      TypeFloat,
	"string":      TypeString,
	"text":        TypeString,
	"boolean":     TypeBoolean,
	"bool":        TypeBoolean,
	"date":        TypeDate,
	"datetime":    TypeDatetime,
	"timestamp":   TypeDatetime,
	"category":    TypeCategory,
	"enum":        TypeCategory,
}

// ParseSemanticType resolves a type name. Unknown names yield TypeUnsupported and false.
func ParseSemanticType(s string) (SemanticType, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return TypeUnsupported, false
	}
	return t, true
}

// String returns the canonical name of the type.
func (t SemanticType) String() string {
	if t < 0 || t >= NumSemanticTypes {
		return fmt.Sprintf("SemanticType(%d)", int(t))
	}
	return typeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t SemanticType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names are
// accepted and decode to TypeUnsupported.
func (t *SemanticType) UnmarshalText(text []byte) error {
	*t, _ = ParseSemanticType(string(text))
	return nil
}

// SemanticTypes returns every supported member of the enum in declaration order.
func SemanticTypes() []SemanticType {
	types := make([]SemanticType, 0, NumSemanticTypes-1)
	for t := TypeIdentifier; t < NumSemanticTypes; t++ {
		types = append(types, t)
	}
	return types
}
