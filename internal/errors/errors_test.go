package errors_test

import (
	"errors"
	"fmt"
	"testing"

	syncerrors "postman-sync/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestMalformedInputError(t *testing.T) {
	t.Run("with source and cause", func(t *testing.T) {
		err := syncerrors.NewMalformedInputError("API data", "invalid JSON", errors.New("unexpected EOF"))
		assert.Equal(t, "malformed API data: invalid JSON: unexpected EOF", err.Error())
		assert.True(t, syncerrors.IsMalformedInput(err))
		assert.False(t, syncerrors.IsCollaboratorFailure(err))
	})

	t.Run("without source", func(t *testing.T) {
		err := &syncerrors.MalformedInputError{Message: "expected object"}
		assert.Equal(t, "malformed input: expected object", err.Error())
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("preview: %w", syncerrors.NewMalformedInputError("", "bad", nil))
		assert.True(t, errors.Is(err, syncerrors.ErrMalformedInput))
	})
}

func TestMissingCredentialError(t *testing.T) {
	err := syncerrors.NewMissingCredentialError("Set them in the environment.", "POSTMAN_COLLECTION_UID", "POSTMAN_API_KEY")
	assert.Equal(t, "missing POSTMAN_COLLECTION_UID, POSTMAN_API_KEY. Set them in the environment.", err.Error())
	assert.True(t, syncerrors.IsMissingCredential(err))
}

func TestCollaboratorError(t *testing.T) {
	tests := []struct {
		name string
		err  *syncerrors.CollaboratorError
		want string
	}{
		{
			name: "status and message",
			err:  syncerrors.NewCollaboratorError("fetch collection", 404, "collection not found", nil),
			want: "fetch collection failed (status 404): collection not found",
		},
		{
			name: "status only",
			err:  syncerrors.NewCollaboratorError("update collection", 500, "", nil),
			want: "update collection failed (status 500)",
		},
		{
			name: "transport error",
			err:  syncerrors.NewCollaboratorError("fetch collection", 0, "", errors.New("connection refused")),
			want: "fetch collection failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, syncerrors.IsCollaboratorFailure(tt.err))
		})
	}

	cause := errors.New("dial tcp: timeout")
	err := syncerrors.NewCollaboratorError("fetch collection", 0, "", cause)
	assert.ErrorIs(t, err, cause)
}

func TestUnsupportedOptionError(t *testing.T) {
	err := syncerrors.NewUnsupportedOptionError("format_type", "pdf", "markdown", "json")
	assert.Equal(t, "unsupported format_type 'pdf'. Use 'markdown' or 'json'", err.Error())
	assert.True(t, syncerrors.IsUnsupportedOption(err))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", syncerrors.Describe(nil))
	assert.Equal(t,
		"Error parsing API data: malformed input: bad",
		syncerrors.Describe(syncerrors.NewMalformedInputError("", "bad", nil)))
	assert.Equal(t,
		"Error: something else",
		syncerrors.Describe(errors.New("something else")))
}
