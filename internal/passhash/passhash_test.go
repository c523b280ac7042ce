package passhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cr3t")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := Verify("s3cr3t", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("not-the-password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaltIsUniquePerDigest(t *testing.T) {
	first, err := Hash("same password")
	require.NoError(t, err)

	second, err := Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMalformedDigest(t *testing.T) {
	testCases := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not a digest", "md5:deadbeef"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Verify("whatever", testCase.encoded)
			assert.ErrorIs(t, err, ErrMalformedDigest)
		})
	}
}
