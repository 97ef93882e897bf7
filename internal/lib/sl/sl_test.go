package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestErr_Nil(t *testing.T) {
	attr := Err(nil)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "<nil>", attr.Value.String())
}

func TestDecision(t *testing.T) {
	attr := Decision("deny_requires_upgrade")
	assert.Equal(t, "decision", attr.Key)
	assert.Equal(t, "deny_requires_upgrade", attr.Value.String())
}
