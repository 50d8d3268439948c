package match

import (
	"testing"
	"time"

	"github.com/jaikisan157/shadowchat/internal/model/protocol"
)

// linkSyntheticPeer wires a synthetic pairing directly, skipping the sweep
// and its greeting goroutine, so delivery paths can be driven synchronously.
func linkSyntheticPeer(svc *Service, humanID, peerID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.linkLocked(humanID, peerID, true)
	svc.fallbacks[peerID] = &fallbackPeer{id: peerID, humanID: humanID}
}

func TestFallbackSweepAssignsSyntheticPartner(t *testing.T) {
	peers := &fakePeers{interests: []string{"Gaming", "Memes"}}
	svc := NewService(testConfig(), peers)
	a, connA := register(t, svc, "")

	svc.FindMatch(a, []string{"gaming"})
	connA.clear()
	backdateQueue(svc, testConfig().FallbackThreshold)

	svc.SweepFallback()

	matched := framesOf[protocol.Matched](connA)
	if len(matched) != 1 {
		t.Fatalf("expected 1 matched frame, got %d", len(matched))
	}
	if matched[0].PartnerID == "" || matched[0].PartnerID == a {
		t.Fatalf("synthetic partner id looks wrong: %q", matched[0].PartnerID)
	}
	if matched[0].Message != "You both like Gaming. Say hi!" {
		t.Fatalf("matched copy should reflect the shared interest, got %q", matched[0].Message)
	}

	if p, synthetic, ok := partnerOf(svc, a); !ok || !synthetic || p != matched[0].PartnerID {
		t.Fatal("link table should hold a synthetic pairing")
	}
	if queueLen(svc) != 0 {
		t.Fatal("assigned session should leave the queue")
	}

	peers.mu.Lock()
	created := len(peers.created)
	peers.mu.Unlock()
	if created != 1 {
		t.Fatalf("expected 1 peer created, got %d", created)
	}
}

func TestFallbackSweepLeavesFreshWaitersAlone(t *testing.T) {
	svc, _ := newTestService()
	a, connA := register(t, svc, "")

	svc.FindMatch(a, []string{"gaming"})
	connA.clear()

	svc.SweepFallback()

	if len(framesOf[protocol.Matched](connA)) != 0 {
		t.Fatal("a session inside the fallback threshold must keep waiting")
	}
	if queueLen(svc) != 1 {
		t.Fatal("entry should remain queued")
	}
}

func TestSyntheticReplyDelivery(t *testing.T) {
	peers := &fakePeers{reply: "lol nice"}
	svc := NewService(testConfig(), peers)
	a, connA := register(t, svc, "")
	linkSyntheticPeer(svc, a, "peer-1")

	svc.deliverToPeer(a, "peer-1", "hello there")

	typing := framesOf[protocol.Typing](connA)
	if len(typing) != 2 || !typing[0].IsTyping || typing[1].IsTyping {
		t.Fatalf("reply should be bracketed by typing on/off, got %v", typing)
	}

	delivered := framesOf[protocol.Message](connA)
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(delivered))
	}
	if delivered[0].Text != "lol nice" || delivered[0].From != "stranger" {
		t.Fatalf("unexpected delivery %+v", delivered[0])
	}
}

func TestSyntheticReplyDroppedWhenPairingEnds(t *testing.T) {
	peers := &fakePeers{reply: "too late"}
	svc := NewService(testConfig(), peers)
	a, connA := register(t, svc, "")
	linkSyntheticPeer(svc, a, "peer-1")

	svc.StopChat(a)
	connA.clear()

	svc.deliverToPeer(a, "peer-1", "anyone there")

	if len(framesOf[protocol.Message](connA)) != 0 {
		t.Fatal("replies that outlive their pairing must be discarded")
	}
	if len(framesOf[protocol.Typing](connA)) != 0 {
		t.Fatal("no typing indicator should leak after the pairing ended")
	}
}

func TestSyntheticDisengageLooksLikeHumanDeparture(t *testing.T) {
	peers := &fakePeers{disengage: true}
	svc := NewService(testConfig(), peers)
	a, connA := register(t, svc, "")
	linkSyntheticPeer(svc, a, "peer-1")

	svc.deliverToPeer(a, "peer-1", "still there?")

	notices := noticesOf(connA, "partner_disconnected")
	if len(notices) != 1 {
		t.Fatal("disengage should surface as a partner disconnect")
	}
	if notices[0].Message != msgPartnerDisconnected {
		t.Fatalf("unexpected disconnect copy %q", notices[0].Message)
	}
	if _, _, linked := partnerOf(svc, a); linked {
		t.Fatal("link should be dissolved after disengage")
	}

	removed := peers.removedPeers()
	if len(removed) != 1 || removed[0] != "peer-1" {
		t.Fatalf("peer state should be discarded, removed=%v", removed)
	}
}

func TestStopChatDiscardsSyntheticPeer(t *testing.T) {
	peers := &fakePeers{}
	svc := NewService(testConfig(), peers)
	a, _ := register(t, svc, "")
	linkSyntheticPeer(svc, a, "peer-1")

	svc.StopChat(a)

	removed := peers.removedPeers()
	if len(removed) != 1 || removed[0] != "peer-1" {
		t.Fatalf("ending the chat should discard the peer, removed=%v", removed)
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.fallbacks) != 0 {
		t.Fatal("fallback table should be empty")
	}
}

func TestGameAndReactionFramesDroppedForSyntheticPartner(t *testing.T) {
	svc, _ := newTestService()
	a, connA := register(t, svc, "")
	linkSyntheticPeer(svc, a, "peer-1")
	connA.clear()

	svc.RelayGame(a, []byte(`{"type":"game_move"}`))
	svc.React(a, "msg-1", "🔥")
	svc.SetTyping(a, true)

	if len(connA.rawFrames()) != 0 || len(framesOf[protocol.ReactionReceived](connA)) != 0 {
		t.Fatal("frames addressed to a synthetic partner must be dropped")
	}
}

func TestSyntheticMessageEchoesToSender(t *testing.T) {
	peers := &fakePeers{reply: "yea fr"}
	svc := NewService(testConfig(), peers)
	a, connA := register(t, svc, "")
	linkSyntheticPeer(svc, a, "peer-1")

	svc.SendMessage(a, "whats up")

	echoes := framesOf[protocol.MessageSent](connA)
	if len(echoes) != 1 || echoes[0].Text != "whats up" {
		t.Fatalf("sender should get the echo immediately, got %v", echoes)
	}

	// The reply arrives asynchronously; with a zero typing delay it lands
	// quickly.
	deadline := time.After(2 * time.Second)
	for {
		if msgs := framesOf[protocol.Message](connA); len(msgs) == 1 {
			if msgs[0].Text != "yea fr" {
				t.Fatalf("unexpected reply %q", msgs[0].Text)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the synthetic reply")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
