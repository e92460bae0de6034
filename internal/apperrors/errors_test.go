package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOfWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("kick: %w", ErrKickNotLeader)

	assert.Equal(t, CodeUnauthorized, CodeOf(err))
	assert.True(t, errors.Is(err, ErrKickNotLeader))
	assert.Equal(t, http.StatusForbidden, Status(err))
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Unavailable(errors.Wrap(cause, "store.GetParty"))

	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, Status(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestResponseHidesCause(t *testing.T) {
	resp := Response(Unavailable(errors.New("connection refused")))
	assert.Equal(t, "store_unavailable", resp.Error)
	assert.NotContains(t, resp.Message, "refused")

	resp = Response(errors.New("boom"))
	assert.Equal(t, "internal_error", resp.Error)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrCannotKickSelf, http.StatusBadRequest},
		{ErrPartyNotFound, http.StatusNotFound},
		{ErrAlreadyInParty, http.StatusConflict},
		{ErrPartyConflict, http.StatusConflict},
		{ErrInvitesDisabled, http.StatusUnprocessableEntity},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}
