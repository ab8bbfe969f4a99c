package terminal

import "sync"

// SessionInfo is the outlet and shift the terminal is selling under.
type SessionInfo struct {
	OutletID string `json:"outlet_id"`
	ShiftID  string `json:"shift_id"`
}

type Session struct {
	mu   sync.RWMutex
	info SessionInfo
}

func NewSession(outletID, shiftID string) *Session {
	return &Session{info: SessionInfo{OutletID: outletID, ShiftID: shiftID}}
}

func (s *Session) OutletID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info.OutletID
}

func (s *Session) ShiftID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info.ShiftID
}

func (s *Session) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Set replaces both values. An empty value clears the selection.
func (s *Session) Set(info SessionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
}
