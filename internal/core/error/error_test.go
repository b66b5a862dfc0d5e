package errx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestFetchFailedWrapsOnce(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := FetchFailed(cause)
	assert.Equal(t, KindFetchFailure, err.Kind)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, err, FetchFailed(err))
	assert.Nil(t, FetchFailed(nil))
}

func TestFetchFailedKeepsRemoteStatus(t *testing.T) {
	err := FetchFailed(FromStatus(http.StatusNotFound, "gone"))
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, KindFetchFailure, err.Kind)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusNotFound, KindNotFound},
		{http.StatusInternalServerError, KindFetchFailure},
		{http.StatusBadRequest, KindFetchFailure},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "")
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.Contains(t, err.Error(), http.StatusText(tt.status))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInvalidQuantity, KindOf(InvalidQuantity(4)))
	assert.Equal(t, KindInvalidInput, KindOf(InvalidInput(errors.New("empty"))))

	var target *AppError
	wrapped := errors.Join(errors.New("context"), NotFound("product"))
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	err := WrapRedis(redis.Nil)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, redis.Nil)

	err = WrapRedis(errors.New("i/o timeout"))
	assert.Equal(t, KindPersistence, KindOf(err))
	var app *AppError
	assert.ErrorAs(t, err, &app)
	assert.Equal(t, http.StatusBadGateway, app.Status)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", New(nil, http.StatusInternalServerError, "boom").Error())
	assert.Equal(t, "boom: cause", New(errors.New("cause"), http.StatusInternalServerError, "boom").Error())
}
