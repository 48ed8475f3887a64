package convert

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrTo(t *testing.T) {
	assert.Equal(t, 12, StrTo(" 12 ").MustInt())
	assert.Equal(t, 0, StrTo("x").MustInt())
	assert.EqualValues(t, 1<<40, StrTo("1099511627776").MustInt64())
}

func TestStructAssign(t *testing.T) {
	type src struct {
		Title string
		Tags  []string
		Extra int
	}
	type dst struct {
		Title string
		Tags  []string
	}

	s := &src{Title: "a", Tags: []string{"x"}, Extra: 3}
	d := &dst{}
	require.NoError(t, StructAssignE(s, d))
	assert.Equal(t, "a", d.Title)
	assert.Equal(t, []string{"x"}, d.Tags)

	s.Tags[0] = "changed"
	assert.Equal(t, "x", d.Tags[0])
}

func TestStructToMap(t *testing.T) {
	m := map[string]interface{}{}
	require.NoError(t, StructToMap(struct {
		Name string `json:"name"`
	}{Name: "n"}, m))
	assert.Equal(t, "n", m["name"])
}

func TestStructAssignUUIDToString(t *testing.T) {
	type src struct{ ID uuid.UUID }
	type dst struct{ ID string }

	id := uuid.New()
	d := &dst{}
	StructAssign(&src{ID: id}, d)
	assert.Equal(t, id.String(), d.ID)
}
