package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type BoqType string

const (
	BoqBeforeDrm        BoqType = "Before DRM BOQ"
	BoqAfterDrm         BoqType = "After DRM BOQ"
	BoqConstructionDone BoqType = "Construction Done BOQ"
	BoqAbd              BoqType = "ABD BOQ"
)

var boqTypes = [...]BoqType{BoqBeforeDrm, BoqAfterDrm, BoqConstructionDone, BoqAbd}

func BoqTypes() []BoqType {
	out := make([]BoqType, len(boqTypes))
	copy(out, boqTypes[:])
	return out
}

// QuantityField is the item key holding this milestone's quantity.
func (t BoqType) QuantityField() string {
	switch t {
	case BoqBeforeDrm:
		return "beforeDrmBoq"
	case BoqAfterDrm:
		return "afterDrmBoq"
	case BoqConstructionDone:
		return "constDoneBoq"
	case BoqAbd:
		return "abdBoq"
	}
	return ""
}

// ParseBoqType accepts the stored milestone name, its quantity field name or the
// milestone name without the trailing "BOQ".
func ParseBoqType(value string) (BoqType, bool) {
	v := strings.ToLower(strings.Join(strings.Fields(value), " "))
	if v == "" {
		return "", false
	}
	for _, t := range boqTypes {
		full := strings.ToLower(string(t))
		if v == full || v == strings.TrimSuffix(full, " boq") || v == strings.ToLower(t.QuantityField()) {
			return t, true
		}
	}
	return "", false
}

const (
	boqItemMaterialCode = "materialCode"
	boqItemDescription  = "description"
)

// BoqItem is one spreadsheet line. Quantity columns differ per milestone, so every
// field other than the material code and description is kept as decoded.
type BoqItem struct {
	MaterialCode string
	Description  string
	Values       map[string]any
}

func NewBoqItem(materialCode, description string, t BoqType, quantity string) BoqItem {
	item := BoqItem{MaterialCode: materialCode, Description: description, Values: map[string]any{}}
	if field := t.QuantityField(); field != "" {
		item.Values[field] = quantity
	}
	return item
}

func (i *BoqItem) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	i.MaterialCode = CoerceString(raw[boqItemMaterialCode])
	i.Description = CoerceString(raw[boqItemDescription])
	delete(raw, boqItemMaterialCode)
	delete(raw, boqItemDescription)
	i.Values = raw
	return nil
}

func (i BoqItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Values)+2)
	for k, v := range i.Values {
		out[k] = v
	}
	out[boqItemMaterialCode] = i.MaterialCode
	if i.Description != "" {
		out[boqItemDescription] = i.Description
	}
	return json.Marshal(out)
}

// Quantity reads a quantity field as an integer. Strings parse their integer prefix,
// numbers truncate toward zero. Missing, null and non-numeric values are not defined.
func (i BoqItem) Quantity(field string) (int, bool) {
	v, ok := i.Values[field]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case string:
		return parseIntPrefix(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return truncFloat(f)
	case float64:
		return truncFloat(t)
	case float32:
		return truncFloat(float64(t))
	case int:
		return t, true
	case int64:
		return int(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// CoerceString renders document values the way they compare as material codes.
func CoerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return strconv.FormatInt(n, 10)
		}
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseIntPrefix(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func truncFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
