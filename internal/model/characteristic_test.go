package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharacteristicsUnmarshalNormalizesNumbers(t *testing.T) {
	var cs Characteristics
	err := json.Unmarshal([]byte(`[{"type":"seats","value":42},{"type":"projector","value":true}]`), &cs)
	require.NoError(t, err)

	seats, ok := cs.IntValue(CharacteristicSeats)
	require.True(t, ok)
	require.Equal(t, 42, seats)

	c, ok := cs.Get("projector")
	require.True(t, ok)
	require.Equal(t, true, c.Value)
}

func TestCharacteristicUnmarshalRejectsFractionsAndObjects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"fractional number", `{"type":"seats","value":12.5}`},
		{"object value", `{"type":"seats","value":{"n":1}}`},
		{"array value", `{"type":"seats","value":[1]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Characteristic
			require.Error(t, json.Unmarshal([]byte(tc.in), &c))
		})
	}
}

func TestPredicateMatches(t *testing.T) {
	cs := Characteristics{
		{Type: "seats", Value: 30},
		{Type: "projector", Value: true},
		{Type: "board", Value: "whiteboard"},
	}

	cases := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"equals int", Predicate{Type: "seats", Operator: OpEquals, Value: 30}, true},
		{"not equals int", Predicate{Type: "seats", Operator: OpNotEquals, Value: 31}, true},
		{"greater than", Predicate{Type: "seats", Operator: OpGreaterThan, Value: 29}, true},
		{"greater or equal boundary", Predicate{Type: "seats", Operator: OpGreaterThanOrEqual, Value: 30}, true},
		{"less than fails", Predicate{Type: "seats", Operator: OpLessThan, Value: 30}, false},
		{"less or equal boundary", Predicate{Type: "seats", Operator: OpLessThanOrEqual, Value: 30}, true},
		{"equals bool", Predicate{Type: "projector", Operator: OpEquals, Value: true}, true},
		{"equals string", Predicate{Type: "board", Operator: OpEquals, Value: "whiteboard"}, true},
		{"missing characteristic", Predicate{Type: "wifi", Operator: OpEquals, Value: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.p.Matches(cs)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPredicateOrderedOperatorNeedsInts(t *testing.T) {
	cs := Characteristics{{Type: "board", Value: "whiteboard"}}
	_, err := Predicate{Type: "board", Operator: OpGreaterThan, Value: "a"}.Matches(cs)
	require.Error(t, err)
}

func TestRoomSeats(t *testing.T) {
	room := Room{Characteristics: Characteristics{{Type: CharacteristicSeats, Value: 12}}}
	seats, ok := room.Seats()
	require.True(t, ok)
	require.Equal(t, 12, seats)

	bare := Room{}
	_, ok = bare.Seats()
	require.False(t, ok)
}
