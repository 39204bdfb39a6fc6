package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ToJSON encodes v for a JSON column. Nil slices are stored as [] so the
// column is never NULL.
func ToJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// Strings decodes a JSON string array column, returning an empty slice for
// anything that is not one.
func Strings(j datatypes.JSON) []string {
	out := []string{}
	if len(j) == 0 {
		return out
	}
	_ = json.Unmarshal(j, &out)
	return out
}

// Ints decodes a JSON integer array column.
func Ints(j datatypes.JSON) []int {
	out := []int{}
	if len(j) == 0 {
		return out
	}
	_ = json.Unmarshal(j, &out)
	return out
}
