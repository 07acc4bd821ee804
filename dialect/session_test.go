// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dialect

import (
	"errors"
	"testing"
)

func TestSessionCountsAndCloses(t *testing.T) {
	s := Open(echoTranslator())
	for i := 0; i < 3; i++ {
		if _, _, err := s.Translate(Unit{}, Unit{}); err != nil {
			t.Fatalf("Translate() error: %v", err)
		}
	}
	if got := s.Translations(); got != 3 {
		t.Errorf("Translations() = %d, want 3", got)
	}

	s.Close()
	s.Close()
	if !s.Closed() {
		t.Error("Closed() = false after Close")
	}
	if _, _, err := s.Translate(Unit{}, Unit{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Translate() after Close error = %v, want ErrSessionClosed", err)
	}
	if got := s.Translations(); got != 3 {
		t.Errorf("Translations() after Close = %d, want 3", got)
	}
}

func TestSessionCountsFailures(t *testing.T) {
	boom := errors.New("boom")
	s := Open(TranslatorFunc(func(Unit, Unit) (string, string, error) {
		return "", "", boom
	}))
	defer s.Close()

	if _, _, err := s.Translate(Unit{}, Unit{}); !errors.Is(err, boom) {
		t.Errorf("Translate() error = %v, want %v", err, boom)
	}
	if got := s.Translations(); got != 1 {
		t.Errorf("Translations() = %d, want 1", got)
	}
}
