// Package honeynet emits login and upload events to the central collector.
package honeynet

import "time"

// EventTimeLayout is the timestamp layout of emitted events, UTC.
const EventTimeLayout = "2006-01-02 15:04:05"

const (
	// EventTypeLogin marks a PASS attempt event.
	EventTypeLogin = "login"

	// EventTypeFile marks an upload/scan event.
	EventTypeFile = "file"
)

// Event is the collector wire format. Content is one of LoginContent or
// FileContent depending on Type.
type Event struct {
	HoneypotID int    `json:"honeypotID"`
	Token      string `json:"token"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	Content    any    `json:"content"`
}

// envelope wraps an event for the collector, which expects a single
// top-level "event" key.
type envelope struct {
	Event Event `json:"event"`
}

// LoginContent carries one credential attempt.
type LoginContent struct {
	SrcIP   string `json:"srcIP"`
	Service string `json:"service"`
	User    string `json:"user"`
	Pass    string `json:"pass"`
}

// FileContent carries one uploaded file together with its scan result.
// SHA1 is historical naming on the collector side; the value is the SHA-256
// of the upload joined with the VirusTotal result.
type FileContent struct {
	SrcIP   string `json:"srcIP"`
	Service string `json:"service"`
	Fname   string `json:"fname"`
	SHA1    string `json:"sha1"`
	Size    string `json:"size"`
}

// eventTimestamp returns the current UTC time in the collector layout.
func eventTimestamp() string {
	return time.Now().UTC().Format(EventTimeLayout)
}
