package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"roomdesk/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		kind service.Kind
		want int
	}{
		{service.KindZeroDuration, http.StatusBadRequest},
		{service.KindSpanTooLong, http.StatusBadRequest},
		{service.KindCapacityExceeded, http.StatusBadRequest},
		{service.KindRoomDefective, http.StatusBadRequest},
		{service.KindOverlap, http.StatusConflict},
		{service.KindDuplicateName, http.StatusConflict},
		{service.KindRoomBooked, http.StatusConflict},
		{service.KindBuildingNotEmpty, http.StatusConflict},
		{service.KindRoomNotFound, http.StatusNotFound},
		{service.KindBookingNotFound, http.StatusNotFound},
		{service.KindBuildingNotFound, http.StatusNotFound},
		{service.KindMissingCapacityConfig, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			require.Equal(t, tc.want, statusFor(tc.kind))
		})
	}
}
