package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	base := stderrors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  NewError("push", base),
			want: "argus.push: boom",
		},
		{
			name: "with dataset",
			err:  NewDatasetError("push", "wildlife", base),
			want: "argus.push dataset wildlife: boom",
		},
		{
			name: "with path",
			err:  NewPathError("transfer", "/data/img.png", base),
			want: "argus.transfer /data/img.png: boom",
		},
		{
			name: "with dataset and path",
			err:  NewDatasetError("push", "wildlife", base).WithPath("/data/img.png"),
			want: "argus.push wildlife /data/img.png: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := stderrors.New("boom")
	err := NewError("push", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, base, err.Unwrap())
}

func TestWithMessageKeepsSentinel(t *testing.T) {
	err := NewError("push", ErrPrecondition).WithMessage("root path missing")

	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Contains(t, err.Error(), "root path missing")
}

func TestWithDataset(t *testing.T) {
	err := NewError("push", ErrInvalidInput).WithDataset("wildlife")
	assert.Equal(t, "wildlife", err.Dataset)
}

func TestTransferError(t *testing.T) {
	err := &TransferError{
		Path:       "/data/img.png",
		StatusCode: 503,
		Body:       "backend unavailable",
	}

	assert.True(t, IsTransferFailed(err))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.Contains(t, err.Error(), "/data/img.png")
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "backend unavailable")

	var terr *TransferError
	require.ErrorAs(t, error(err), &terr)
	assert.Equal(t, 503, terr.StatusCode)
}

func TestTransferErrorNoBody(t *testing.T) {
	err := &TransferError{Path: "/data/img.png", StatusCode: 500}
	assert.Equal(t, "argus: transfer failed for /data/img.png: status 500", err.Error())
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name    string
		helper  func(error) bool
		matched error
		other   error
	}{
		{name: "invalid path", helper: IsInvalidPath, matched: ErrInvalidPath, other: ErrPrecondition},
		{name: "precondition", helper: IsPrecondition, matched: ErrPrecondition, other: ErrInvalidPath},
		{name: "transfer failed", helper: IsTransferFailed, matched: ErrTransferFailed, other: ErrUploadFailed},
		{name: "upload pending", helper: IsUploadPending, matched: ErrUploadPending, other: ErrUploadFailed},
		{name: "not found", helper: IsNotFound, matched: ErrNotFound, other: ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.helper(NewError("op", tt.matched)))
			assert.False(t, tt.helper(NewError("op", tt.other)))
			assert.False(t, tt.helper(nil))
		})
	}
}
