package zsubs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatusError(t *testing.T) {
	t.Parallel()

	t.Run("reads the envelope", func(t *testing.T) {
		t.Parallel()

		err := zsubs.NewStatusError(http.StatusNotFound, []byte(`{"code":1002,"message":"Customer does not exist."}`))
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Equal(t, 1002, err.Code)
		assert.Equal(t, "Customer does not exist.", err.Message)
		assert.Equal(t, "HTTP 404: Customer does not exist. (code: 1002)", err.Error())
	})

	t.Run("plain body", func(t *testing.T) {
		t.Parallel()

		err := zsubs.NewStatusError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
		assert.Equal(t, 0, err.Code)
		assert.Empty(t, err.Message)
		assert.Equal(t, "HTTP 502: Bad Gateway", err.Error())
		assert.Equal(t, []byte("<html>bad gateway</html>"), err.Body)
	})

	t.Run("JSON without a code", func(t *testing.T) {
		t.Parallel()

		err := zsubs.NewStatusError(http.StatusInternalServerError, []byte(`{"message":"boom"}`))
		assert.Empty(t, err.Message)
	})
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	err := &zsubs.APIError{Code: 2, Message: "Invalid value passed for interval"}
	assert.Equal(t, "Invalid value passed for interval (code: 2)", err.Error())
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &zsubs.TransportError{Method: http.MethodGet, Path: "customers", Err: cause}

	assert.Equal(t, "GET customers: connection refused", err.Error())
	require.ErrorIs(t, err, cause)
	assert.Equal(t, -1, zsubs.ErrorCode(err))
}

//nolint:funlen
func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("loading customer: %w", err) }

	tests := []struct {
		name         string
		err          error
		code         int
		notFound     bool
		unauthorized bool
		rateLimited  bool
	}{
		{
			name:     "not found status",
			err:      wrap(zsubs.NewStatusError(http.StatusNotFound, nil)),
			code:     -1,
			notFound: true,
		},
		{
			name:     "record not found code",
			err:      wrap(&zsubs.APIError{Code: zsubs.ErrorCodeRecordNotFound}),
			code:     zsubs.ErrorCodeRecordNotFound,
			notFound: true,
		},
		{
			name:     "resource not found in status body",
			err:      zsubs.NewStatusError(http.StatusBadRequest, []byte(`{"code":1004,"message":"gone"}`)),
			code:     zsubs.ErrorCodeResourceNotFound,
			notFound: true,
		},
		{
			name:     "no match",
			err:      wrap(zsubs.ErrNotFound),
			code:     -1,
			notFound: true,
		},
		{
			name:         "unauthorized status",
			err:          zsubs.NewStatusError(http.StatusUnauthorized, nil),
			code:         -1,
			unauthorized: true,
		},
		{
			name:         "invalid token code",
			err:          wrap(&zsubs.APIError{Code: zsubs.ErrorCodeInvalidOAuthToken, Message: "Invalid OAuth token."}),
			code:         zsubs.ErrorCodeInvalidOAuthToken,
			unauthorized: true,
		},
		{
			name:        "throttled status",
			err:         zsubs.NewStatusError(http.StatusTooManyRequests, nil),
			code:        -1,
			rateLimited: true,
		},
		{
			name:        "throttled code",
			err:         &zsubs.APIError{Code: zsubs.ErrorCodeTooManyRequests},
			code:        zsubs.ErrorCodeTooManyRequests,
			rateLimited: true,
		},
		{
			name: "other",
			err:  errors.New("other"),
			code: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.code, zsubs.ErrorCode(tt.err))
			assert.Equal(t, tt.notFound, zsubs.IsNotFound(tt.err))
			assert.Equal(t, tt.unauthorized, zsubs.IsUnauthorized(tt.err))
			assert.Equal(t, tt.rateLimited, zsubs.IsRateLimited(tt.err))
		})
	}
}
