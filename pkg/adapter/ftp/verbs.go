package ftp

import "strings"

// Verb is one FTP command verb.
type Verb string

const (
	VerbUser Verb = "USER"
	VerbPass Verb = "PASS"
	VerbAcct Verb = "ACCT"
	VerbQuit Verb = "QUIT"
	VerbPort Verb = "PORT"
	VerbType Verb = "TYPE"
	VerbMode Verb = "MODE"
	VerbStru Verb = "STRU"
	VerbRetr Verb = "RETR"
	VerbStor Verb = "STOR"
	VerbSyst Verb = "SYST"
	VerbCwd  Verb = "CWD"
	VerbNoop Verb = "NOOP"
	VerbHelp Verb = "HELP"
	VerbMkd  Verb = "MKD"
	VerbPwd  Verb = "PWD"
	VerbList Verb = "LIST"
	VerbCdup Verb = "CDUP"
	VerbDele Verb = "DELE"
	VerbAllo Verb = "ALLO"
	VerbRmd  Verb = "RMD"
	VerbStat Verb = "STAT"

	// VerbUnsupported is the sentinel for anything outside the set above.
	// Sessions reply 502 and stay connected.
	VerbUnsupported Verb = "NOT_SUPPORTED"
)

var knownVerbs = map[Verb]struct{}{
	VerbUser: {}, VerbPass: {}, VerbAcct: {}, VerbQuit: {},
	VerbPort: {}, VerbType: {}, VerbMode: {}, VerbStru: {},
	VerbRetr: {}, VerbStor: {}, VerbSyst: {}, VerbCwd: {},
	VerbNoop: {}, VerbHelp: {}, VerbMkd: {}, VerbPwd: {},
	VerbList: {}, VerbCdup: {}, VerbDele: {}, VerbAllo: {},
	VerbRmd: {}, VerbStat: {},
}

// parseVerb matches a raw token against the verb set, case-insensitively.
func parseVerb(token string) Verb {
	verb := Verb(strings.ToUpper(token))
	if _, ok := knownVerbs[verb]; ok {
		return verb
	}
	return VerbUnsupported
}
