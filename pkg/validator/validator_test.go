package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomValidator(t *testing.T) {
	type uri struct {
		NoteID string `binding:"required,uuid"`
	}
	v := NewCustomValidator()

	assert.NoError(t, v.ValidateStruct(&uri{NoteID: "0b0f6f1e-9d7a-4a79-9d7e-6a8e3c1d2b4f"}))
	assert.Error(t, v.ValidateStruct(&uri{NoteID: "nope"}))
	assert.Error(t, v.ValidateStruct(uri{}))
	assert.NoError(t, v.ValidateStruct("not a struct"))
	assert.NotNil(t, v.Engine())
}
