package domain

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var containerPattern = regexp.MustCompile(`^[0-9a-f-]{36}$`)

func genUUID() gopter.Gen {
	return gen.SliceOfN(16, gen.UInt8()).Map(func(b []uint8) uuid.UUID {
		var id uuid.UUID
		copy(id[:], b)
		return id
	})
}

func TestContainerNameProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("container name is lowercase, hyphen/alnum only, fixed length", prop.ForAll(
		func(id uuid.UUID) bool {
			return containerPattern.MatchString(ContainerNameFor(id))
		},
		genUUID(),
	))

	properties.Property("container name is deterministic and case normalized", prop.ForAll(
		func(id uuid.UUID) bool {
			upper, err := ParseNoteID(strings.ToUpper(id.String()))
			if err != nil {
				return id == uuid.Nil
			}
			return ContainerNameFor(upper) == ContainerNameFor(id)
		},
		genUUID(),
	))

	properties.Property("archive container never equals the attachment container", prop.ForAll(
		func(id uuid.UUID) bool {
			return ArchiveContainerFor(id) != ContainerNameFor(id) &&
				strings.HasPrefix(ArchiveContainerFor(id), ContainerNameFor(id))
		},
		genUUID(),
	))

	properties.TestingRun(t)
}

func TestParseNoteID(t *testing.T) {
	id := uuid.New()

	got, err := ParseNoteID(" " + strings.ToUpper(id.String()) + " ")
	assert.NoError(t, err)
	assert.Equal(t, id, got)

	for _, bad := range []string{"", "abc", "{" + id.String() + "}", "urn:uuid:" + id.String(), uuid.Nil.String(), strings.ReplaceAll(id.String(), "-", "")} {
		_, err := ParseNoteID(bad)
		assert.ErrorIs(t, err, ErrInvalidNoteID, bad)
	}
}
