package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/model/persona"
)

func newFillerService(t *testing.T) *Service {
	t.Helper()
	store := persona.NewMemoryStore(persona.Seed())
	svc, err := NewService(context.Background(), store, config.AIConfig{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	if svc.ModelEnabled() {
		t.Fatal("service without credentials must run filler-only")
	}
	return svc
}

func TestCreateAssignsPersonaInterests(t *testing.T) {
	svc := newFillerService(t)

	interests := svc.Create("peer-1", nil)
	if len(interests) == 0 {
		t.Fatal("every persona declares interests")
	}
	if svc.ActivePeers() != 1 {
		t.Fatalf("expected 1 active peer, got %d", svc.ActivePeers())
	}
}

func TestCreatePrefersOverlappingPersona(t *testing.T) {
	svc := newFillerService(t)

	interests := svc.Create("peer-1", []string{"gaming"})
	found := false
	for _, label := range interests {
		if strings.EqualFold(label, "gaming") {
			found = true
		}
	}
	if !found {
		t.Fatalf("persona should share the requested interest, got %v", interests)
	}
}

func TestGreetingIsNonEmpty(t *testing.T) {
	svc := newFillerService(t)
	svc.Create("peer-1", nil)

	if g := svc.Greeting("peer-1"); g == "" {
		t.Fatal("greeting must not be empty")
	}
}

func TestReplyFallsBackToFiller(t *testing.T) {
	svc := newFillerService(t)
	svc.Create("peer-1", nil)

	reply, disengaged := svc.Reply(context.Background(), "peer-1", "hey")
	if disengaged {
		t.Fatal("a fresh peer must not disengage on the first message")
	}

	known := false
	for _, filler := range fillers {
		if reply == filler {
			known = true
		}
	}
	if !known {
		t.Fatalf("filler-only reply %q is not from the filler set", reply)
	}
}

func TestReplyDisengagesPastThreshold(t *testing.T) {
	svc := newFillerService(t)

	svc.mu.Lock()
	svc.peers["peer-1"] = &peerState{
		persona: persona.Persona{ID: "bored", DisengageAfter: 0, DisengageChance: 1},
	}
	svc.mu.Unlock()

	reply, disengaged := svc.Reply(context.Background(), "peer-1", "hello")
	if !disengaged {
		t.Fatal("persona past its threshold with chance 1 must disengage")
	}
	if reply != "" {
		t.Fatalf("disengage reply must be empty, got %q", reply)
	}
}

func TestReplyForUnknownPeer(t *testing.T) {
	svc := newFillerService(t)

	reply, disengaged := svc.Reply(context.Background(), "missing", "hello")
	if reply != "" || disengaged {
		t.Fatalf("unknown peer should yield empty reply, got %q %v", reply, disengaged)
	}
}

func TestHistoryStaysBounded(t *testing.T) {
	svc := newFillerService(t)
	svc.Create("peer-1", nil)

	for i := 0; i < historyLimit*2; i++ {
		reply, disengaged := svc.Reply(context.Background(), "peer-1", "hey")
		if disengaged {
			// Personas may disengage mid-run; re-create and keep going.
			svc.Remove("peer-1")
			svc.Create("peer-1", nil)
			continue
		}
		if reply == "" {
			t.Fatal("reply must never be empty without disengage")
		}
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if st, ok := svc.peers["peer-1"]; ok && len(st.history) > historyLimit {
		t.Fatalf("history grew to %d, limit is %d", len(st.history), historyLimit)
	}
}

func TestTypingDelayBounds(t *testing.T) {
	svc := newFillerService(t)

	for _, text := range []string{"", "hi", strings.Repeat("long message ", 40)} {
		delay := svc.TypingDelay(text)
		if delay < 800*time.Millisecond {
			t.Fatalf("delay %v below the human floor for %q", delay, text)
		}
		if delay > 8*time.Second {
			t.Fatalf("delay %v above any plausible typing time for %q", delay, text)
		}
	}
}

func TestRemoveDiscardsPeerState(t *testing.T) {
	svc := newFillerService(t)
	svc.Create("peer-1", nil)
	svc.Remove("peer-1")

	if svc.ActivePeers() != 0 {
		t.Fatalf("expected 0 active peers, got %d", svc.ActivePeers())
	}
	// Removing twice is harmless.
	svc.Remove("peer-1")
}
