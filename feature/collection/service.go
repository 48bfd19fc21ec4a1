package collection

import (
	"context"
	"sync"
	"time"

	"datasync/core/provider"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Status describes the outcome of the most recent pass.
type Status struct {
	PassID  string     `json:"pass_id,omitempty"`
	URL     string     `json:"url,omitempty"`
	Changed bool       `json:"changed"`
	Error   string     `json:"error,omitempty"`
	At      *time.Time `json:"at,omitempty"`
	Objects int        `json:"objects"`
}

// Service exposes the collection of a provider and coalesces refreshes.
type Service struct {
	provider *provider.Provider
	endpoint string
	logger   *zap.Logger
	sf       singleflight.Group

	mu   sync.RWMutex
	last Status
	stop []func()
}

// NewService creates a service over p. Refresh fetches endpoint.
func NewService(p *provider.Provider, endpoint string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{provider: p, endpoint: endpoint, logger: logger}
	s.stop = append(s.stop,
		p.On(provider.EventCompleted, s.record),
		p.On(provider.EventError, s.record),
	)
	return s
}

func (s *Service) record(_ string, ev provider.Event) {
	if ev.Sender != s.provider {
		return
	}
	now := time.Now().UTC()
	st := Status{PassID: ev.PassID, URL: ev.URL, Changed: ev.Changed, At: &now, Objects: s.provider.Len()}
	if ev.Err != nil {
		st.Error = ev.Err.Error()
	}
	s.mu.Lock()
	s.last = st
	s.mu.Unlock()
}

// Close stops tracking pass outcomes.
func (s *Service) Close() {
	for _, fn := range s.stop {
		fn()
	}
}

// Objects returns the collection in insertion order.
func (s *Service) Objects() []any {
	return s.provider.Objects()
}

// Object returns the object stored under key.
func (s *Service) Object(key string) (any, bool) {
	return s.provider.ObjectForKey(key)
}

// Keys returns the collection keys in insertion order.
func (s *Service) Keys() []string {
	return s.provider.Keys()
}

// Status returns the outcome of the last pass. Objects always reflects the
// current collection size.
func (s *Service) Status() Status {
	s.mu.RLock()
	st := s.last
	s.mu.RUnlock()
	st.Objects = s.provider.Len()
	return st
}

// Refresh runs one pass. Concurrent callers share a single pass and its result.
func (s *Service) Refresh(ctx context.Context) (bool, error) {
	v, err, shared := s.sf.Do("refresh", func() (any, error) {
		return s.provider.FetchOnce(ctx, s.endpoint, provider.Request{})
	})
	if shared {
		s.logger.Debug("Refresh shared with a concurrent caller")
	}
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
