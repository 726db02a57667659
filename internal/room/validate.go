package room

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	numberMaxLen    = 50
	rentScale       = 2
	defaultFloorMin = -10
	defaultFloorMax = 200
)

// rentCeiling matches NUMERIC(12,2).
var rentCeiling = decimal.New(1, 10)

// RawRoomInput is an unvalidated submission. Each field keeps its raw JSON so
// that absent, null, string and number values stay distinguishable; form
// submissions arrive as JSON strings (see RawInputFromForm).
type RawRoomInput struct {
	BuildingID json.RawMessage `json:"buildingId"`
	Floor      json.RawMessage `json:"floor"`
	Number     json.RawMessage `json:"number"`
	TypeID     json.RawMessage `json:"typeId"`
	BaseRent   json.RawMessage `json:"baseRent"`
	Status     json.RawMessage `json:"status"`
	Remark     json.RawMessage `json:"remark"`
}

// ParseRawInput decodes a JSON object body.
func ParseRawInput(body []byte) (RawRoomInput, error) {
	var raw RawRoomInput
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw, fmt.Errorf("room input must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return raw, err
	}
	return raw, nil
}

// RawInputFromForm builds a RawRoomInput from form values. Keys missing from
// the form stay absent.
func RawInputFromForm(form url.Values) RawRoomInput {
	field := func(key string) json.RawMessage {
		vals, ok := form[key]
		if !ok || len(vals) == 0 {
			return nil
		}
		b, _ := json.Marshal(vals[0])
		return b
	}
	return RawRoomInput{
		BuildingID: field("buildingId"),
		Floor:      field("floor"),
		Number:     field("number"),
		TypeID:     field("typeId"),
		BaseRent:   field("baseRent"),
		Status:     field("status"),
		Remark:     field("remark"),
	}
}

// Rules carries the configurable bounds of room validation.
type Rules struct {
	FloorMin int
	FloorMax int
}

var DefaultRules = Rules{FloorMin: defaultFloorMin, FloorMax: defaultFloorMax}

// Validate checks raw against DefaultRules.
func Validate(raw RawRoomInput) (Input, error) {
	return DefaultRules.Validate(raw)
}

// Validate maps raw into a typed Input. On failure it returns a
// *ValidationError naming every rejected field and a zero Input.
func (rules Rules) Validate(raw RawRoomInput) (Input, error) {
	verr := &ValidationError{}
	var in Input

	if id, ok := requiredInt(verr, "buildingId", raw.BuildingID); ok {
		if id < 1 {
			verr.add("buildingId", "must be greater than or equal to 1")
		}
		in.BuildingID = id
	}

	if floor, ok := requiredInt(verr, "floor", raw.Floor); ok {
		if floor < int64(rules.FloorMin) || floor > int64(rules.FloorMax) {
			verr.add("floor", fmt.Sprintf("must be between %d and %d", rules.FloorMin, rules.FloorMax))
		}
		in.Floor = int(floor)
	}

	switch v := decodeRaw(raw.Number); v.kind {
	case kindAbsent, kindNull:
		verr.add("number", "is required")
	case kindString:
		n := utf8.RuneCountInString(v.str)
		switch {
		case n == 0:
			verr.add("number", "is required")
		case n > numberMaxLen:
			verr.add("number", fmt.Sprintf("must be at most %d characters", numberMaxLen))
		default:
			in.Number = v.str
		}
	default:
		verr.add("number", "must be a string")
	}

	switch v := decodeRaw(raw.TypeID); {
	case v.kind == kindAbsent, v.kind == kindNull, v.kind == kindString && strings.TrimSpace(v.str) == "":
	default:
		if id, ok := toInt(verr, "typeId", v); ok {
			in.TypeID = &id
		}
	}

	if d, ok := requiredNumber(verr, "baseRent", raw.BaseRent); ok {
		switch {
		case d.IsNegative():
			verr.add("baseRent", "must be greater than or equal to 0")
		case !d.Equal(d.Round(rentScale)):
			verr.add("baseRent", fmt.Sprintf("must have at most %d decimal places", rentScale))
		case d.GreaterThanOrEqual(rentCeiling):
			verr.add("baseRent", "must be less than "+rentCeiling.String())
		default:
			in.BaseRent = d
		}
	}

	switch v := decodeRaw(raw.Status); {
	case v.kind == kindAbsent, v.kind == kindNull, v.kind == kindString && v.str == "":
		in.Status = DefaultStatus
	case v.kind == kindString:
		st, err := ParseStatus(v.str)
		if err != nil {
			verr.add("status", statusMessage())
		}
		in.Status = st
	default:
		verr.add("status", statusMessage())
	}

	switch v := decodeRaw(raw.Remark); v.kind {
	case kindAbsent, kindNull:
	case kindString:
		s := v.str
		in.Remark = &s
	default:
		verr.add("remark", "must be a string")
	}

	if len(verr.Fields) > 0 {
		return Input{}, verr
	}
	return in, nil
}

func statusMessage() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return "must be one of " + strings.Join(names, ", ")
}

type rawKind int

const (
	kindAbsent rawKind = iota
	kindNull
	kindString
	kindNumber
	kindOther
)

type rawValue struct {
	kind rawKind
	str  string
}

func decodeRaw(raw json.RawMessage) rawValue {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return rawValue{kind: kindAbsent}
	}
	switch c := b[0]; {
	case c == 'n':
		return rawValue{kind: kindNull}
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return rawValue{kind: kindOther}
		}
		return rawValue{kind: kindString, str: s}
	case c == '-' || (c >= '0' && c <= '9'):
		return rawValue{kind: kindNumber, str: string(b)}
	default:
		return rawValue{kind: kindOther}
	}
}

// Inputs such as 1e200000000 are rejected before any arithmetic; rescaling
// them would allocate a power of ten of that size.
const (
	maxExponent      = 64
	maxIntegerDigits = 19
)

// numberProblem is a validation message for a present but unusable number.
type numberProblem string

const (
	numberOK         numberProblem = ""
	numberNotNumeric numberProblem = "must be a number"
	numberOutOfRange numberProblem = "is out of range"
	numberNotInteger numberProblem = "must be an integer"
)

// toNumber coerces numbers and numeric strings. Blank strings count as missing.
func toNumber(v rawValue) (d decimal.Decimal, present bool, problem numberProblem) {
	var s string
	switch v.kind {
	case kindAbsent, kindNull:
		return decimal.Zero, false, numberOK
	case kindString:
		s = strings.TrimSpace(v.str)
		if s == "" {
			return decimal.Zero, false, numberOK
		}
	case kindNumber:
		s = v.str
	default:
		return decimal.Zero, true, numberNotNumeric
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, true, numberNotNumeric
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, true, numberOutOfRange
	}
	return d, true, numberOK
}

func requiredNumber(verr *ValidationError, field string, raw json.RawMessage) (decimal.Decimal, bool) {
	d, present, problem := toNumber(decodeRaw(raw))
	if !present {
		verr.add(field, "is required")
		return decimal.Zero, false
	}
	if problem != numberOK {
		verr.add(field, string(problem))
		return decimal.Zero, false
	}
	return d, true
}

func requiredInt(verr *ValidationError, field string, raw json.RawMessage) (int64, bool) {
	v := decodeRaw(raw)
	if _, present, _ := toNumber(v); !present {
		verr.add(field, "is required")
		return 0, false
	}
	return toInt(verr, field, v)
}

func toInt(verr *ValidationError, field string, v rawValue) (int64, bool) {
	d, _, problem := toNumber(v)
	if problem != numberOK {
		verr.add(field, string(problem))
		return 0, false
	}
	if !d.IsInteger() {
		verr.add(field, string(numberNotInteger))
		return 0, false
	}
	if d.NumDigits()+int(d.Exponent()) > maxIntegerDigits {
		verr.add(field, string(numberOutOfRange))
		return 0, false
	}
	bi := d.BigInt()
	if !bi.IsInt64() {
		verr.add(field, string(numberOutOfRange))
		return 0, false
	}
	return bi.Int64(), true
}
