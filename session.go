// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"fmt"

	"github.com/gogpu/effect/dialect"
)

// Session compiles a batch of effects with one translator instance.
// Translators with expensive setup should be used through a session when
// many effects are compiled together.
type Session struct {
	c    *Compiler
	sess *dialect.TranslatorSession
}

// BeginBatch opens a session. End must be called when the batch is done.
func (c *Compiler) BeginBatch() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, err := c.openSession()
	if err != nil {
		return nil, err
	}
	return &Session{c: c, sess: sess}, nil
}

// Compile compiles one effect in the session.
func (s *Session) Compile(req Request) (*Result, error) {
	if s.sess.Closed() {
		return nil, fmt.Errorf("effect: %w", dialect.ErrSessionClosed)
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.compile(s.sess, req)
}

// Translations returns the number of program pairs translated in the
// session.
func (s *Session) Translations() int {
	return s.sess.Translations()
}

// End closes the session. Calling End more than once is harmless.
func (s *Session) End() {
	s.sess.Close()
}
