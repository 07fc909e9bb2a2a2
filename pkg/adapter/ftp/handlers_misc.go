package ftp

import "github.com/marmos91/ftpot/internal/logger"

func (s *Session) handleSyst() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codeSystemType, "UNIX Type: L8")
}

// handleMode accepts only stream mode.
func (s *Session) handleMode(request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	if request.Arg == "S" {
		return s.reply(codeOK, "Using Stream transfer mode")
	}
	return s.reply(codeNotImplemented, "Only Stream transfer-mode supported")
}

// handleStru accepts only file structure.
func (s *Session) handleStru(request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	if request.Arg != "F" {
		return s.reply(codeNotImplemented, "Only File structure mode is supported")
	}
	return s.reply(codeOK, "In File structure mode")
}

// handleType ignores the argument; the honeypot is always in binary mode.
func (s *Session) handleType() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codeOK, "Always in binary mode")
}

func (s *Session) handleNoop() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codeOK, "Successfully did nothing")
}

// handlePort stages the active-mode data target for the next transfer.
func (s *Session) handlePort(request Request) bool {
	if !s.authenticated() {
		return s.denyAccess()
	}

	target, err := parsePortTarget(request.Arg)
	if err != nil {
		logger.Debug("Rejected malformed PORT argument",
			"session_id", s.id,
			"arg", request.Arg,
			"error", err)
		return s.reply(codeNotImplemented, "Invalid PORT arguments.")
	}

	s.dataTarget = target
	logger.Debug("Staged data channel target", "session_id", s.id, "target", target)
	return s.reply(codeOK, "PORT command successful.")
}

func (s *Session) handleAllo() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codeIgnored, "Ignored.")
}

func (s *Session) handleStat() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codeBadParameter, "Rejected.")
}

// handleCdup denies the parent-traversal shortcut; attackers must CWD.
func (s *Session) handleCdup() bool {
	if !s.authenticated() {
		return s.denyAccess()
	}
	return s.reply(codeActionFailed, "Rejected.")
}
