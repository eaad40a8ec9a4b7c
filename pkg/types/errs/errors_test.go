package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       error
		kind      Kind
		permanent bool
	}{
		{"nil", nil, "", false},
		{"parse", &ParseError{Raw: []byte("x"), Err: cause}, KindParse, true},
		{"validation", &ValidationError{Missing: []string{"id"}}, KindValidation, true},
		{"store", &StoreError{Attempts: 3, Err: cause}, KindStore, false},
		{"sink", &SinkError{Err: cause}, KindSink, false},
		{"wrapped validation", fmt.Errorf("ctx: %w", &ValidationError{}), KindValidation, true},
		{"plain", cause, KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t,
		"validation error: missing required fields: id, user",
		(&ValidationError{Missing: []string{"id", "user"}}).Error(),
	)
	assert.Equal(t, "validation error", (&ValidationError{}).Error())
	assert.Equal(t, "store error after 3 attempt(s): connection refused", (&StoreError{Attempts: 3, Err: cause}).Error())

	assert.ErrorIs(t, &StoreError{Err: cause}, cause)
	assert.ErrorIs(t, &SinkError{Err: cause}, cause)
	assert.ErrorIs(t, &ParseError{Err: cause}, cause)
}
