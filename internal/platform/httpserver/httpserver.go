// Package httpserver builds the process HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts bound slow or stalled clients. Check-in traffic is short bursts
// of small JSON bodies from event doors, so the limits are tight.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		ReadHeader: 5 * time.Second,
		Read:       10 * time.Second,
		Write:      15 * time.Second,
		Idle:       60 * time.Second,
	}
}

// New builds the server. Zero timeout fields fall back to the defaults.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	def := DefaultTimeouts()
	if t.ReadHeader == 0 {
		t.ReadHeader = def.ReadHeader
	}
	if t.Read == 0 {
		t.Read = def.Read
	}
	if t.Write == 0 {
		t.Write = def.Write
	}
	if t.Idle == 0 {
		t.Idle = def.Idle
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: t.ReadHeader,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
	}
}
