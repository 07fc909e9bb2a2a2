package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// parsePortTarget parses a PORT argument of the form "h1,h2,h3,h4,p1,p2"
// into the dial address "h1.h2.h3.h4:p" with p = p1*256 + p2.
func parsePortTarget(arg string) (string, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 6 {
		return "", fmt.Errorf("expected 6 numbers, got %d", len(parts))
	}

	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return "", fmt.Errorf("invalid number %q", part)
		}
		nums[i] = n
	}

	host := fmt.Sprintf("%d.%d.%d.%d", nums[0], nums[1], nums[2], nums[3])
	port := nums[4]*256 + nums[5]
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// openDataChannel dials the target staged by the most recent PORT command.
// The target is consumed; the next data transfer needs a fresh PORT.
func (s *Session) openDataChannel(ctx context.Context) (net.Conn, error) {
	if s.dataTarget == "" {
		return nil, errors.New("no data target staged")
	}
	target := s.dataTarget
	s.dataTarget = ""

	var dialer net.Dialer
	return dialer.DialContext(ctx, "tcp", target)
}

// streamFile copies the file at path onto the data channel in 1 KiB chunks.
func streamFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
