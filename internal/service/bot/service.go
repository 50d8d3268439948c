package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/model/persona"
)

// historyLimit bounds the conversation window sent to the model: the
// system prompt plus the most recent turns.
const historyLimit = 20

// replyTimeout bounds one model invocation.
const replyTimeout = 20 * time.Second

// fillers are generic replies substituted when the model is unavailable or
// fails; a bot must always have something to say.
var fillers = []string{"haha", "yea fr", "lol nice", "true", "hmm interesting", "wbu?", "thats cool"}

// greetings open a conversation before the human says anything.
var greetings = []string{"heyy", "yo", "hey whats up", "hi", "heyyy", "sup", "hey there", "hii", "yo whats good", "heyy 👋"}

// peerState is one simulated stranger's conversation memory.
type peerState struct {
	persona persona.Persona
	system  string
	history []*schema.Message
	turns   int
}

// Service implements the simulated-partner capability contract on top of
// an LLM chain. Without credentials it still works, answering from the
// filler set.
type Service struct {
	personas persona.Store
	chain    compose.Runnable[map[string]any, *schema.Message]

	mu    sync.Mutex
	peers map[string]*peerState
}

// NewService builds the bot backend. The chain is compiled once at
// startup; a disabled AI config yields a filler-only service.
func NewService(ctx context.Context, personas persona.Store, cfg config.AIConfig) (*Service, error) {
	svc := &Service{
		personas: personas,
		peers:    make(map[string]*peerState),
	}

	if !cfg.Enabled() {
		return svc, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	svc.chain = runnable
	return svc, nil
}

// ModelEnabled reports whether replies come from the LLM or the filler set.
func (s *Service) ModelEnabled() bool {
	return s.chain != nil
}

// Create assigns a persona to a new synthetic peer, preferring one whose
// interests overlap the waiting user's, and returns the persona's declared
// interests.
func (s *Service) Create(peerID string, interests []string) []string {
	p := s.pickPersona(interests)

	s.mu.Lock()
	s.peers[peerID] = &peerState{
		persona: p,
		system:  buildSystemPrompt(p),
	}
	s.mu.Unlock()

	log.Printf("[bot] peer created id=%s persona=%s", peerID, p.ID)
	return append([]string(nil), p.Interests...)
}

// pickPersona selects from the roster by case-insensitive interest
// overlap, falling back to a uniform pick.
func (s *Service) pickPersona(interests []string) persona.Persona {
	roster := s.personas.List()

	if len(interests) > 0 {
		wanted := make(map[string]struct{}, len(interests))
		for _, label := range interests {
			wanted[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
		}

		var matching []persona.Persona
		for _, p := range roster {
			for _, label := range p.Interests {
				if _, ok := wanted[strings.ToLower(label)]; ok {
					matching = append(matching, p)
					break
				}
			}
		}
		if len(matching) > 0 {
			return matching[rand.IntN(len(matching))]
		}
	}

	return roster[rand.IntN(len(roster))]
}

// Greeting produces the opening line and records it as the peer's first
// turn.
func (s *Service) Greeting(peerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.peers[peerID]
	if !ok {
		return "hey"
	}

	greeting := greetings[rand.IntN(len(greetings))]
	st.history = append(st.history, schema.AssistantMessage(greeting, nil))
	return greeting
}

// Reply answers an inbound text. The second return value signals that the
// peer chose to end the relationship; past its persona's threshold each
// further message carries that persona's disengage probability.
func (s *Service) Reply(ctx context.Context, peerID, text string) (string, bool) {
	s.mu.Lock()
	st, ok := s.peers[peerID]
	if !ok {
		s.mu.Unlock()
		return "", false
	}

	st.turns++
	if st.turns > st.persona.DisengageAfter && rand.Float64() < st.persona.DisengageChance {
		s.mu.Unlock()
		log.Printf("[bot] peer disengaging id=%s persona=%s turns=%d", peerID, st.persona.ID, st.turns)
		return "", true
	}

	history := append([]*schema.Message(nil), st.history...)
	st.history = append(st.history, schema.UserMessage(text))
	system := st.system
	s.mu.Unlock()

	reply := s.generate(ctx, peerID, system, history, text)
	if reply == "" {
		reply = fillers[rand.IntN(len(fillers))]
	}

	s.mu.Lock()
	if st, ok := s.peers[peerID]; ok {
		st.history = append(st.history, schema.AssistantMessage(reply, nil))
		if len(st.history) > historyLimit {
			st.history = append([]*schema.Message(nil), st.history[len(st.history)-historyLimit:]...)
		}
	}
	s.mu.Unlock()

	return reply, false
}

// generate invokes the chain, returning empty on any failure so the caller
// substitutes a filler. Model errors never surface to the human side.
func (s *Service) generate(ctx context.Context, peerID, system string, history []*schema.Message, query string) string {
	if s.chain == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":  system,
		"history": history,
		"query":   query,
	})
	if err != nil {
		log.Printf("[bot] model invocation failed peer=%s: %v", peerID, err)
		return ""
	}

	return strings.TrimSpace(response.Content)
}

// TypingDelay estimates how long a human would take to read the inbound
// message and type a reply of this length.
func (s *Service) TypingDelay(text string) time.Duration {
	base := time.Duration(len(text)) * 80 * time.Millisecond
	if base > 4*time.Second {
		base = 4 * time.Second
	}
	variation := time.Duration(rand.IntN(1000)-500) * time.Millisecond
	reading := 500*time.Millisecond + time.Duration(rand.IntN(1500))*time.Millisecond

	delay := reading + base + variation
	if delay < 800*time.Millisecond {
		delay = 800 * time.Millisecond
	}
	return delay
}

// Remove discards a peer's conversation state.
func (s *Service) Remove(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.peers[peerID]; ok {
		log.Printf("[bot] peer removed id=%s persona=%s", peerID, st.persona.ID)
		delete(s.peers, peerID)
	}
}

// ActivePeers returns the number of live simulated partners.
func (s *Service) ActivePeers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}
