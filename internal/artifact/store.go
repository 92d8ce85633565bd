// Package artifact keeps synthesized audio clips in memory just long enough
// for the signaling gateway to fetch and play them.
package artifact

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrArtifactMissing is returned when a clip was never written or its grace
// period already elapsed.
var ErrArtifactMissing = errors.New("artifact not found")

type clip struct {
	bytes     []byte
	writtenAt time.Time
	timer     *time.Timer
}

// Store holds audio clips keyed by generated name. Every clip self-deletes
// after the grace period whether or not it was fetched; a fetch is expected
// at most once.
type Store struct {
	mu     sync.Mutex
	clips  map[string]*clip
	grace  time.Duration
	logger *zap.Logger
}

// NewStore creates a store whose clips live for the given grace period
func NewStore(grace time.Duration, logger *zap.Logger) *Store {
	if grace <= 0 {
		grace = 2 * time.Minute
	}
	return &Store{
		clips:  make(map[string]*clip),
		grace:  grace,
		logger: logger,
	}
}

// Put stores audio under a fresh generated name and schedules its deletion
func (s *Store) Put(audio []byte) string {
	name := fmt.Sprintf("%s.mp3", uuid.New().String())

	s.mu.Lock()
	defer s.mu.Unlock()

	c := &clip{
		bytes:     audio,
		writtenAt: time.Now(),
	}
	c.timer = time.AfterFunc(s.grace, func() {
		s.delete(name)
	})
	s.clips[name] = c

	s.logger.Debug("Artifact stored",
		zap.String("name", name),
		zap.Int("bytes", len(audio)))
	return name
}

// Fetch returns the stored bytes once. The clip is torn down shortly after
// a successful fetch; the grace timer covers clips never fetched at all.
func (s *Store) Fetch(name string) ([]byte, error) {
	s.mu.Lock()
	c, ok := s.clips[name]
	s.mu.Unlock()

	if !ok {
		return nil, ErrArtifactMissing
	}

	// Fire-and-forget teardown, detached from any session lifecycle.
	time.AfterFunc(time.Second, func() {
		s.delete(name)
	})

	return c.bytes, nil
}

// Len returns the number of clips currently held
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

func (s *Store) delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clips[name]
	if !ok {
		return
	}
	c.timer.Stop()
	delete(s.clips, name)
	s.logger.Debug("Artifact deleted", zap.String("name", name))
}
