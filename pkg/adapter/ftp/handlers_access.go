package ftp

import (
	"context"

	"github.com/marmos91/ftpot/internal/logger"
)

// handleUser stores the presented username.
func (s *Session) handleUser(request Request) bool {
	s.username = request.Arg
	return s.reply(codeNeedPassword, "Please specify the password.")
}

// handlePass runs one attempt through the login policy. Every attempt is
// reported to the collector, admitted or not. On admission the working
// directory is reset to the root and the tree persisted, so a returning
// attacker always starts at "/".
func (s *Session) handlePass(ctx context.Context, request Request) bool {
	s.password = request.Arg

	s.adapter.deps.Events.EmitLogin(s.ip, s.username, s.password)

	attacker, admitted, err := s.adapter.deps.Login.Authenticate(ctx, s.ip, s.username, s.password)
	if err != nil {
		logger.Error("Login evaluation failed", "session_id", s.id, "ip", s.ip, "error", err)
		return false
	}

	if !admitted {
		return s.reply(codeNotLoggedIn, "Login incorrect.")
	}

	s.attacker = attacker
	if fs := s.attacker.FileSystem; fs != nil {
		fs.ClearPath()
		if !s.persistFS(ctx) {
			return false
		}
	}

	return s.reply(codeLoggedIn, "Login successful.")
}

// handleAcct rejects account commands outright, authenticated or not.
func (s *Session) handleAcct() bool {
	return s.reply(codeNotLoggedIn, "Rejected")
}

func (s *Session) handleQuit() bool {
	s.reply(codeGoodbye, "Bye.")
	return false
}

// handleHelp sends the configured help text. Not gated: the help text is
// part of the pre-login lure.
func (s *Session) handleHelp() bool {
	return s.reply(codeNotLoggedIn, s.adapter.cfg.HelpMessage)
}
