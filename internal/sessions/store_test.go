package sessions

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hatifai/hatif/domain/entities"
)

func TestPutGetRemove(t *testing.T) {
	store := NewStore()
	session := entities.NewCallSession("sess-1", "+9715550001", "ar")

	store.Put(session)

	got, err := store.Get("sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("Expected sess-1, got %s", got.ID)
	}

	store.Remove("sess-1")
	if _, err := store.Get("sess-1"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound after remove, got %v", err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := NewStore()
	if _, err := store.Get("ghost"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestIdleSessions(t *testing.T) {
	store := NewStore()

	fresh := entities.NewCallSession("fresh", "+100", "en")
	stale := entities.NewCallSession("stale", "+200", "en")
	stale.LastActivityAt = time.Now().Add(-10 * time.Minute)

	store.Put(fresh)
	store.Put(stale)

	ids := store.IdleSessions(5 * time.Minute)
	if len(ids) != 1 || ids[0] != "stale" {
		t.Errorf("Expected only the stale session, got %v", ids)
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			store.Put(entities.NewCallSession(id, "+100", "en"))
			store.Get(id)
			store.Len()
		}(i)
	}
	wg.Wait()

	if store.Len() != 20 {
		t.Errorf("Expected 20 sessions, got %d", store.Len())
	}
}

func TestReaperExpiresIdleSessions(t *testing.T) {
	store := NewStore()
	stale := entities.NewCallSession("stale", "+200", "en")
	stale.LastActivityAt = time.Now().Add(-time.Hour)
	store.Put(stale)

	var mu sync.Mutex
	var expired []string
	reaper := NewReaper(store, time.Minute, 20*time.Millisecond, func(id string) {
		mu.Lock()
		expired = append(expired, id)
		mu.Unlock()
		store.Remove(id)
	}, zap.NewNop())

	reaper.Start()
	defer reaper.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(expired) == 0 || expired[0] != "stale" {
		t.Errorf("Expected stale session expired via callback, got %v", expired)
	}
	if store.Len() != 0 {
		t.Errorf("Expected store drained, len=%d", store.Len())
	}
}
