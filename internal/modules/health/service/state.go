package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	positionOpen      atomic.Bool
	lastDiscoveryUnix atomic.Int64 // unix seconds
	lastMonitorUnix   atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetPositionOpen(v bool) { s.positionOpen.Store(v) }
func (s *State) PositionOpen() bool     { return s.positionOpen.Load() }

func (s *State) TouchDiscovery(t time.Time) { s.lastDiscoveryUnix.Store(t.Unix()) }
func (s *State) LastDiscovery() time.Time   { return fromUnix(s.lastDiscoveryUnix.Load()) }

func (s *State) TouchMonitor(t time.Time) { s.lastMonitorUnix.Store(t.Unix()) }
func (s *State) LastMonitor() time.Time   { return fromUnix(s.lastMonitorUnix.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func fromUnix(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
