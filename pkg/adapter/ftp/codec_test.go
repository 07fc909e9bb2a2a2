package ftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameOf builds a NUL-padded frame the way a client's single short write
// arrives on the wire.
func frameOf(command string) []byte {
	frame := make([]byte, frameSize)
	copy(frame, command)
	return frame
}

func TestDecode(t *testing.T) {
	t.Run("verb and argument", func(t *testing.T) {
		request, err := decode(frameOf("USER c\r\n"))
		require.NoError(t, err)
		assert.Equal(t, VerbUser, request.Verb)
		assert.Equal(t, "c", request.Arg)
	})

	t.Run("lowercase verb", func(t *testing.T) {
		request, err := decode(frameOf("user anonymous\r\n"))
		require.NoError(t, err)
		assert.Equal(t, VerbUser, request.Verb)
		assert.Equal(t, "anonymous", request.Arg)
	})

	t.Run("bare verb yields empty argument", func(t *testing.T) {
		request, err := decode(frameOf("PWD\r\n"))
		require.NoError(t, err)
		assert.Equal(t, VerbPwd, request.Verb)
		assert.Empty(t, request.Arg)
	})

	t.Run("unknown verb decodes to sentinel", func(t *testing.T) {
		request, err := decode(frameOf("FEAT x\r\n"))
		require.NoError(t, err)
		assert.Equal(t, VerbUnsupported, request.Verb)
	})

	t.Run("garbage without separator is rejected", func(t *testing.T) {
		frame := make([]byte, frameSize)
		copy(frame, []byte{44, 33, 22, 11, 10, 66, 33, 99})

		_, err := decode(frame)
		assert.ErrorIs(t, err, errBadFrame)
	})

	t.Run("invalid utf8 survives decoding", func(t *testing.T) {
		frame := frameOf("USER \xff\xfe\r\n")
		request, err := decode(frame)
		require.NoError(t, err)
		assert.Equal(t, VerbUser, request.Verb)
		assert.NotEmpty(t, request.Arg)
	})
}

func TestEncodeReply(t *testing.T) {
	assert.Equal(t, []byte("220 Welcome\r\n"), encodeReply(220, "Welcome"))
	assert.Equal(t, []byte("530 Please login with USER and PASS.\r\n"),
		encodeReply(530, "Please login with USER and PASS."))
}

func TestParsePortTarget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		target, err := parsePortTarget("127,0,0,1,4,210")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:1234", target)
	})

	t.Run("high port", func(t *testing.T) {
		target, err := parsePortTarget("10,0,0,2,255,255")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.2:65535", target)
	})

	for _, arg := range []string{
		"",
		"1,2,3,4,5",
		"1,2,3,4,5,6,7",
		"256,0,0,1,4,210",
		"127,0,0,1,-1,0",
		"127,0,0,1,x,0",
	} {
		t.Run("rejects "+arg, func(t *testing.T) {
			_, err := parsePortTarget(arg)
			assert.Error(t, err)
		})
	}
}
