package session

import (
	"sync"
	"testing"
	"time"
)

func TestStoreCreatesIdleSession(t *testing.T) {
	t.Parallel()

	s := NewStore(DefaultTTL)
	if _, ok := s.Snapshot("u1"); ok {
		t.Fatalf("snapshot created a session")
	}

	sess, release := s.Acquire("u1")
	if sess.UserID != "u1" || sess.State != StateIdle {
		t.Fatalf("unexpected new session %+v", sess)
	}
	sess.State = StateAwaitingPhone
	release()

	got, ok := s.Snapshot("u1")
	if !ok || got.State != StateAwaitingPhone {
		t.Fatalf("mutation was not kept: %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d", s.Len())
	}
}

func TestStoreSerializesSameUser(t *testing.T) {
	t.Parallel()

	s := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, release := s.Acquire("u1")
			defer release()
			sess.FullName += "x"
		}()
	}
	wg.Wait()

	got, _ := s.Snapshot("u1")
	if len(got.FullName) != 50 {
		t.Fatalf("lost updates: %d", len(got.FullName))
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	s := NewStore(20 * time.Millisecond)
	_, release := s.Acquire("u1")
	release()

	time.Sleep(60 * time.Millisecond)

	if _, ok := s.Snapshot("u1"); ok {
		t.Fatalf("session outlived its ttl")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := NewStore(DefaultTTL)
	sess, release := s.Acquire("u1")
	sess.Candidates = nil
	release()

	got, _ := s.Snapshot("u1")
	got.State = StateAwaitingPhone

	again, _ := s.Snapshot("u1")
	if again.State != StateIdle {
		t.Fatalf("snapshot shares state with the store")
	}
}
