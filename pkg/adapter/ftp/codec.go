package ftp

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"
)

// frameSize is the fixed control-channel read size. FTP clients send short
// commands; the remainder of the frame stays NUL-padded.
const frameSize = 32

// Control-channel reply codes.
const (
	codeDataOpen       = 150 // about to open the data connection
	codeOK             = 200
	codeIgnored        = 202
	codeSystemType     = 215
	codeReady          = 220 // welcome banner
	codeGoodbye        = 221
	codeTransferDone   = 226
	codeLoggedIn       = 230
	codeActionOK       = 250
	codePathname       = 257
	codeNeedPassword   = 331
	codeUnavailable    = 421 // concurrency-cap rejection
	codeNotImplemented = 502
	codeBadParameter   = 504
	codeNotLoggedIn    = 530
	codeActionFailed   = 550
)

// errBadFrame marks a frame that cannot be split into verb and argument.
// The session closes without replying; malformed input is attacker noise.
var errBadFrame = errors.New("malformed control frame")

// Request is one decoded control-channel command.
type Request struct {
	Verb Verb
	Arg  string
}

// readFrame reads one frame from the control connection. A single short
// write by the client leaves the tail of the frame NUL-padded.
func readFrame(conn net.Conn) ([]byte, error) {
	frame := make([]byte, frameSize)
	if _, err := conn.Read(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// decode parses a raw frame into a Request.
//
// Invalid UTF-8 is replaced rather than rejected, the CRLF terminator is
// folded into a token separator, and the argument keeps only its first
// token with the NUL padding stripped.
func decode(frame []byte) (Request, error) {
	text := strings.ToValidUTF8(string(frame), string(utf8.RuneError))
	text = strings.ReplaceAll(text, "\r\n", " ")

	tokens := strings.Split(text, " ")
	if len(tokens) <= 1 {
		return Request{}, errBadFrame
	}

	return Request{
		Verb: parseVerb(tokens[0]),
		Arg:  strings.TrimRight(tokens[1], "\x00"),
	}, nil
}

// encodeReply renders one reply line for the control channel.
func encodeReply(code int, message string) []byte {
	return []byte(fmt.Sprintf("%d %s\r\n", code, message))
}
