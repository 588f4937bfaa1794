package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

func TestExpansionSetSimpleRoom(t *testing.T) {
	room := &model.Room{ID: model.NewID(), Name: "r1"}
	require.Equal(t, []uuid.UUID{room.ID}, ExpansionSet(room))
}

func TestExpansionSetComposite(t *testing.T) {
	a := model.Room{ID: model.NewID(), Name: "a"}
	b := model.Room{ID: model.NewID(), Name: "b"}
	hall := &model.Room{ID: model.NewID(), Name: "hall", ComposedOf: []model.Room{a, b}}

	require.Equal(t, []uuid.UUID{hall.ID, a.ID, b.ID}, ExpansionSet(hall))
}

func TestExpansionSetChild(t *testing.T) {
	parentID := model.NewID()
	child := &model.Room{ID: model.NewID(), Name: "child", ParentID: &parentID}

	require.Equal(t, []uuid.UUID{child.ID, parentID}, ExpansionSet(child))
}

func TestCheckDefects(t *testing.T) {
	healthy := &model.Room{ID: model.NewID(), Name: "ok"}
	require.NoError(t, CheckDefects(healthy))

	broken := &model.Room{ID: model.NewID(), Name: "broken", Defects: []string{"projector dead"}}
	err := CheckDefects(broken)
	p, ok := AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindRoomDefective, p.Kind)

	// A composite with a defective part is unusable as a whole.
	part := model.Room{ID: model.NewID(), Name: "part", Defects: []string{"no power"}}
	hall := &model.Room{ID: model.NewID(), Name: "hall", ComposedOf: []model.Room{part}}
	err = CheckDefects(hall)
	p, ok = AsProblem(err)
	require.True(t, ok)
	require.Equal(t, KindRoomDefective, p.Kind)
}
