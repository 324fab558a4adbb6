// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package statusapi exposes the controller's published ShareStatus
// snapshots over a loopback-only HTTP server, so a tray-style Surface
// adapter can run out-of-process instead of linking the controller in.
// Grounded on the teacher's pkg/server/server.go: gin.Engine wrapped in
// an http.Server for context-based graceful shutdown, adapted from
// package-level state to an instance (Mountaineer has no single global
// server; cmd/monitor is the only command that starts one).
package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/model"
)

// pollInterval is how often the SSE handler re-checks StatusFunc for a
// new snapshot to push. There is no push-based hook from the controller
// into this package (it would mean the controller importing its own
// status API), so the stream is poll-and-diff rather than event-driven.
const pollInterval = 1 * time.Second

// StatusFunc returns the most recently published statuses. The
// controller supplies this as a closure over its own state, never a
// direct reference — statusapi never reaches back into the controller's
// internals.
type StatusFunc func() []model.ShareStatus

// Server is a loopback-only HTTP server for GET /status and GET /events.
type Server struct {
	log    logger.Logger
	status StatusFunc
	addr   string

	srv       *http.Server
	boundAddr string
}

// New builds a Server bound to 127.0.0.1:port. port=0 lets the OS pick an
// ephemeral port (read back via Addr after Start).
func New(log logger.Logger, port int, status StatusFunc) *Server {
	return &Server{
		log:    log,
		status: status,
		addr:   fmt.Sprintf("127.0.0.1:%d", port),
	}
}

// Start launches the HTTP server in the background and returns once it's
// listening. Call Shutdown (or cancel ctx) to stop it.
func (s *Server) Start(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/status", s.handleStatus)
	engine.GET("/events", s.handleEvents)

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("statusapi: listen on %s: %w", s.addr, err)
	}

	s.srv = &http.Server{Handler: engine}
	s.boundAddr = ln.Addr().String()
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("statusapi server exited", "err", err)
		}
	}()

	s.log.Info("status API listening", "addr", s.boundAddr)
	return nil
}

// Addr returns the address Start actually bound to (resolving an
// ephemeral port=0 to the port the OS chose). Empty before Start.
func (s *Server) Addr() string {
	return s.boundAddr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

// handleEvents streams a new JSON array every time the snapshot's
// serialized form changes, SSE-framed ("data: ...\n\n") the way a tray
// client subscribes to without re-polling /status itself.
func (s *Server) handleEvents(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastSerialized string
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			statuses := s.status()
			serialized := fmt.Sprintf("%+v", statuses)
			if serialized == lastSerialized {
				continue
			}
			lastSerialized = serialized

			fmt.Fprint(c.Writer, "data: ")
			if err := writeJSON(c.Writer, statuses); err != nil {
				return
			}
			// Encode already ended the JSON with a newline; one more
			// blank line closes the SSE frame.
			fmt.Fprint(c.Writer, "\n")
			flusher.Flush()
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
