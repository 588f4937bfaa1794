package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

func TestValidateComposition(t *testing.T) {
	parent := &model.Room{ID: model.NewID(), Name: "hall"}
	otherID := model.NewID()

	cases := []struct {
		name     string
		children []*model.Room
		wantErr  bool
	}{
		{
			"valid children",
			[]*model.Room{
				{ID: model.NewID(), Name: "a"},
				{ID: model.NewID(), Name: "b"},
			},
			false,
		},
		{
			"re-assigning own children is allowed",
			[]*model.Room{{ID: model.NewID(), Name: "a", ParentID: &parent.ID}},
			false,
		},
		{
			"self composition",
			[]*model.Room{{ID: parent.ID, Name: "hall"}},
			true,
		},
		{
			"child of another composite",
			[]*model.Room{{ID: model.NewID(), Name: "taken", ParentID: &otherID}},
			true,
		},
		{
			"nested composite",
			[]*model.Room{{
				ID:         model.NewID(),
				Name:       "deep",
				ComposedOf: []model.Room{{ID: model.NewID(), Name: "leaf"}},
			}},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateComposition(parent, tc.children)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			p, ok := AsProblem(err)
			require.True(t, ok)
			require.Equal(t, KindBadComposition, p.Kind)
		})
	}
}
