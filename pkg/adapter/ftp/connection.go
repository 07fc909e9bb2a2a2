package ftp

import (
	"context"
	"io"
	"net"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/honeypot/models"
	"github.com/marmos91/ftpot/pkg/vfs"
)

// Session is one control connection. It carries the credentials presented
// so far, the bound attacker once a PASS is admitted, and the data-channel
// target staged by the most recent PORT.
type Session struct {
	adapter *Adapter
	conn    net.Conn
	id      string
	ip      string

	username   string
	password   string
	attacker   *models.Attacker
	dataTarget string
}

func newSession(a *Adapter, conn net.Conn, ip string) *Session {
	return &Session{
		adapter: a,
		conn:    conn,
		id:      uuid.NewString(),
		ip:      ip,
	}
}

// Serve greets the client and runs the command loop until the session ends.
//
// Verbs are handled strictly one at a time; the next frame is not read
// until the current handler has returned. A malformed frame closes the
// connection without a reply.
func (s *Session) Serve(ctx context.Context) {
	defer s.handleClose()

	logger.Info("New FTP session", "session_id", s.id, "ip", s.ip)

	if !s.reply(codeReady, s.adapter.cfg.WelcomeMessage) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Session closed on shutdown", "session_id", s.id, "ip", s.ip)
			return
		case <-s.adapter.shutdown:
			logger.Debug("Session closed on shutdown", "session_id", s.id, "ip", s.ip)
			return
		default:
		}

		frame, err := readFrame(s.conn)
		if err != nil {
			if err == io.EOF {
				logger.Debug("Session closed by client", "session_id", s.id, "ip", s.ip)
			} else {
				logger.Debug("Error reading control frame", "session_id", s.id, "ip", s.ip, "error", err)
			}
			return
		}

		request, err := decode(frame)
		if err != nil {
			logger.Info("Dropping session on malformed frame", "session_id", s.id, "ip", s.ip)
			return
		}

		if !s.dispatch(ctx, request) {
			return
		}
	}
}

// dispatch routes one decoded request to its verb handler. Handlers return
// false to end the session.
func (s *Session) dispatch(ctx context.Context, request Request) bool {
	switch request.Verb {
	case VerbUser:
		return s.handleUser(request)
	case VerbPass:
		return s.handlePass(ctx, request)
	case VerbAcct:
		return s.handleAcct()
	case VerbQuit:
		return s.handleQuit()
	case VerbHelp:
		return s.handleHelp()
	case VerbSyst:
		return s.handleSyst()
	case VerbMode:
		return s.handleMode(request)
	case VerbStru:
		return s.handleStru(request)
	case VerbType:
		return s.handleType()
	case VerbNoop:
		return s.handleNoop()
	case VerbPort:
		return s.handlePort(request)
	case VerbCwd:
		return s.handleCwd(request)
	case VerbPwd:
		return s.handlePwd()
	case VerbMkd:
		return s.handleMkd(ctx, request)
	case VerbRmd:
		return s.handleRmd(ctx, request)
	case VerbList:
		return s.handleList(ctx, request)
	case VerbDele:
		return s.handleDele(ctx, request)
	case VerbRetr:
		return s.handleRetr(ctx, request)
	case VerbStor:
		return s.handleStor(ctx, request)
	case VerbCdup:
		return s.handleCdup()
	case VerbAllo:
		return s.handleAllo()
	case VerbStat:
		return s.handleStat()
	default:
		return s.reply(codeNotImplemented, "Command not implemented.")
	}
}

// handleClose recovers from handler panics and closes the connection.
func (s *Session) handleClose() {
	if r := recover(); r != nil {
		logger.Error("Panic in session handler",
			"session_id", s.id,
			"ip", s.ip,
			"error", r,
			"stack", string(debug.Stack()))
	}

	_ = s.conn.Close()
	logger.Debug("FTP session closed", "session_id", s.id, "ip", s.ip)
}

// reply writes one reply line. Returns false on write failure, which ends
// the session.
func (s *Session) reply(code int, message string) bool {
	if _, err := s.conn.Write(encodeReply(code, message)); err != nil {
		logger.Debug("Failed to write reply", "session_id", s.id, "code", code, "error", err)
		return false
	}
	return true
}

// authenticated reports whether a PASS has been admitted on this session.
func (s *Session) authenticated() bool {
	return s.attacker != nil
}

// denyAccess sends the login prompt used for every gated verb.
func (s *Session) denyAccess() bool {
	return s.reply(codeNotLoggedIn, "Please login with USER and PASS.")
}

// fs returns the attacker's deception tree. Only valid once authenticated.
func (s *Session) fs() *vfs.FileSystem {
	return s.attacker.FileSystem
}

// persistFS writes the deception tree back to the attacker row. A failure
// is fatal for the session: the database is authoritative and a desynced
// in-memory view is worse than disconnecting.
func (s *Session) persistFS(ctx context.Context) bool {
	if err := s.adapter.deps.Store.SaveFileSystem(ctx, s.attacker.ID, s.fs()); err != nil {
		logger.Error("Failed to persist filesystem",
			"session_id", s.id,
			"attacker_id", s.attacker.ID,
			"error", err)
		return false
	}
	return true
}
