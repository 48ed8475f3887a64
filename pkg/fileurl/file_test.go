package fileurl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNameRoundTrip(t *testing.T) {
	keys := []string{"a.png", "../etc/passwd", "..", ".", ".meta", "dir\\file", "空格 file.txt", "a%2Fb"}
	for _, k := range keys {
		name := EncodeName(k)
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, "\\")
		assert.False(t, strings.HasPrefix(name, "."), name)

		back, err := DecodeName(name)
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
}

func TestPathSuffixCheckAdd(t *testing.T) {
	assert.Equal(t, "a/", PathSuffixCheckAdd("a", "/"))
	assert.Equal(t, "a/", PathSuffixCheckAdd("a/", "/"))
}

func TestEncodeNameLongKeysAreHashed(t *testing.T) {
	cjk := strings.Repeat("会", 28) + ".png"
	ascii := strings.Repeat("a", 300)

	for _, k := range []string{cjk, ascii} {
		name := EncodeName(k)
		assert.LessOrEqual(t, len(name), MaxEncodedNameLen)
		assert.True(t, IsHashedName(name))
		assert.Equal(t, name, EncodeName(k))

		_, err := DecodeName(name)
		assert.ErrorIs(t, err, ErrHashedName)
	}
	assert.NotEqual(t, EncodeName(cjk), EncodeName(ascii))

	// 短 key 保持可读编码
	assert.False(t, IsHashedName(EncodeName("a.png")))
	assert.False(t, IsHashedName(EncodeName("%h")))
}
