package sessions

import (
	"time"

	"go.uber.org/zap"
)

// Reaper closes sessions left idle beyond a bound, so abandoned calls do
// not accumulate for the life of the process. Expiry goes through the
// provided callback so the owning controller can run its normal Ending
// transition.
type Reaper struct {
	store     *Store
	idleBound time.Duration
	interval  time.Duration
	onExpire  func(sessionID string)
	logger    *zap.Logger
	stopChan  chan struct{}
}

// NewReaper creates a reaper over the given store
func NewReaper(store *Store, idleBound, interval time.Duration, onExpire func(sessionID string), logger *zap.Logger) *Reaper {
	return &Reaper{
		store:     store,
		idleBound: idleBound,
		interval:  interval,
		onExpire:  onExpire,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the background reaping process
func (r *Reaper) Start() {
	go r.loop()
	r.logger.Info("Session reaper started",
		zap.Duration("idleBound", r.idleBound),
		zap.Duration("interval", r.interval))
}

// Stop gracefully stops the reaper
func (r *Reaper) Stop() {
	close(r.stopChan)
	r.logger.Info("Session reaper stopped")
}

func (r *Reaper) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.runReap()
		}
	}
}

func (r *Reaper) runReap() {
	ids := r.store.IdleSessions(r.idleBound)
	if len(ids) == 0 {
		return
	}

	r.logger.Info("Expiring idle sessions", zap.Int("count", len(ids)))
	for _, id := range ids {
		r.onExpire(id)
	}
}
