package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStore("insert content block", cause)

	assert.Equal(t, "store (fatal): insert content block: disk full", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, err.IsFatal())
}

func TestWarningIsNotFatal(t *testing.T) {
	err := NewResolve("no substance for UNII N3RQ532IUT").
		WithField("section", "34073-7")

	assert.False(t, err.IsFatal())
	assert.Equal(t, "34073-7", err.Fields["section"])
	assert.Equal(t, "resolve (warning): no substance for UNII N3RQ532IUT", err.Error())
}
