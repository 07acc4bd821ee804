// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dialect

import (
	"errors"
	"sync"
)

// ErrSessionClosed is returned when translating through a closed session.
var ErrSessionClosed = errors.New("dialect: translator session is closed")

// TranslatorSession holds a translator for the duration of a batch of
// compiles. Translations through one session are serialized.
type TranslatorSession struct {
	mu         sync.Mutex
	translator Translator
	closed     bool
	count      int
}

// Open starts a session using t.
func Open(t Translator) *TranslatorSession {
	return &TranslatorSession{translator: t}
}

// Close releases the translator. Closing twice is a no-op.
func (s *TranslatorSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.translator = nil
}

// Closed reports whether Close has been called.
func (s *TranslatorSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Translations returns the number of program pairs translated so far,
// successful or not.
func (s *TranslatorSession) Translations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Translate runs the session translator on a program pair.
func (s *TranslatorSession) Translate(vs, ps Unit) (vsOut, psOut string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", "", ErrSessionClosed
	}
	if s.translator == nil {
		return "", "", errors.New("dialect: session has no translator")
	}
	s.count++
	return s.translator.Translate(vs, ps)
}
