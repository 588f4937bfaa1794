package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CharacteristicSeats is the trait every room must carry: its seat capacity
// as an integer value.
const CharacteristicSeats = "seats"

// Characteristic is one typed trait of a room, e.g. {"seats": 40} or
// {"projector": true}. Values are restricted to booleans, integers and
// strings; anything else is rejected when decoding.
type Characteristic struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// UnmarshalJSON normalizes numeric values to int so that the rest of the
// code never sees encoding/json's float64 representation.
func (c *Characteristic) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if f, ok := raw.Value.(float64); ok {
		n := int(f)
		if float64(n) != f {
			return fmt.Errorf("characteristic %q: non-integer numeric value %v", raw.Type, f)
		}
		raw.Value = n
	}
	switch raw.Value.(type) {
	case nil, bool, int, string:
	default:
		return fmt.Errorf("characteristic %q: unsupported value type %T", raw.Type, raw.Value)
	}
	c.Type = raw.Type
	c.Value = raw.Value
	return nil
}

// Characteristics is the ordered trait list of a room.
type Characteristics []Characteristic

// Get returns the first characteristic with the given type.
func (cs Characteristics) Get(typ string) (Characteristic, bool) {
	for _, c := range cs {
		if c.Type == typ {
			return c, true
		}
	}
	return Characteristic{}, false
}

// IntValue returns the integer value of the named characteristic. The bool
// is false when the characteristic is absent or not an integer.
func (cs Characteristics) IntValue(typ string) (int, bool) {
	c, ok := cs.Get(typ)
	if !ok {
		return 0, false
	}
	n, ok := c.Value.(int)
	return n, ok
}

// Operator selects how a predicate compares a characteristic value.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpGreaterThan        Operator = "greater_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThan           Operator = "less_than"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
)

// Predicate is one filter condition of a room inquiry. Predicates are
// evaluated in process against the typed trait list rather than pushed into
// SQL, keeping the JSON column an opaque blob to the database.
type Predicate struct {
	Type     string   `json:"type"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// UnmarshalJSON applies the same value normalization as Characteristic.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     string   `json:"type"`
		Operator Operator `json:"operator"`
		Value    any      `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if f, ok := raw.Value.(float64); ok {
		n := int(f)
		if float64(n) != f {
			return fmt.Errorf("predicate %q: non-integer numeric value %v", raw.Type, f)
		}
		raw.Value = n
	}
	p.Type = raw.Type
	p.Operator = Operator(strings.ToLower(string(raw.Operator)))
	p.Value = raw.Value
	return nil
}

// Matches evaluates the predicate against a trait list. A room without the
// requested characteristic never matches. Ordered operators are only defined
// for integer values; using them on anything else is an error, mirroring the
// operator validation of the room inquiry endpoint.
func (p Predicate) Matches(cs Characteristics) (bool, error) {
	c, ok := cs.Get(p.Type)
	if !ok {
		return false, nil
	}
	switch p.Operator {
	case OpEquals:
		return c.Value == p.Value, nil
	case OpNotEquals:
		return c.Value != p.Value, nil
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		want, wantOK := p.Value.(int)
		have, haveOK := c.Value.(int)
		if !wantOK {
			return false, fmt.Errorf("operator %s is only supported for integer values", p.Operator)
		}
		if !haveOK {
			return false, nil
		}
		switch p.Operator {
		case OpGreaterThan:
			return have > want, nil
		case OpGreaterThanOrEqual:
			return have >= want, nil
		case OpLessThan:
			return have < want, nil
		default:
			return have <= want, nil
		}
	default:
		return false, fmt.Errorf("unsupported operator %q", p.Operator)
	}
}
