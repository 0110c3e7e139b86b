// Package chat runs the conversation pipeline: prompt assembly, the upstream
// completion, and the relationship/mood/memory side effects each message
// triggers.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindtype-app/mindtype-server/internal/challenge"
	"github.com/mindtype-app/mindtype-server/internal/companion"
	"github.com/mindtype-app/mindtype-server/internal/config"
	"github.com/mindtype-app/mindtype-server/internal/extraction"
	"github.com/mindtype-app/mindtype-server/internal/llm"
	"github.com/mindtype-app/mindtype-server/internal/memory"
	"github.com/mindtype-app/mindtype-server/internal/metrics"
	"github.com/mindtype-app/mindtype-server/internal/mood"
	inats "github.com/mindtype-app/mindtype-server/internal/nats"
	"github.com/mindtype-app/mindtype-server/internal/prompt"
	"github.com/mindtype-app/mindtype-server/internal/relationship"
)

// Service orchestrates solo and group chat rounds.
type Service struct {
	rels       *relationship.Service
	moods      *mood.Service
	analyzer   *mood.Analyzer
	memories   *memory.Service
	transcript *memory.TranscriptStore
	challenges *challenge.Service
	completer  llm.Completer
	dispatcher extraction.Dispatcher
	cfg        config.ChatConfig
	logger     *slog.Logger
	now        func() time.Time
}

type ServiceDeps struct {
	Relationships *relationship.Service
	Moods         *mood.Service
	Analyzer      *mood.Analyzer
	Memories      *memory.Service
	Transcript    *memory.TranscriptStore
	Challenges    *challenge.Service
	Completer     llm.Completer
	Dispatcher    extraction.Dispatcher
	Config        config.ChatConfig
	Logger        *slog.Logger
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		rels:       deps.Relationships,
		moods:      deps.Moods,
		analyzer:   deps.Analyzer,
		memories:   deps.Memories,
		transcript: deps.Transcript,
		challenges: deps.Challenges,
		completer:  deps.Completer,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// Solo runs one 1:1 round against req.Agents[0]. The mood verdict is computed
// before the completion so the system prompt reflects how this message landed,
// and persisted after the reply succeeds.
func (s *Service) Solo(ctx context.Context, req ChatRequest) (*SoloResponse, error) {
	agent := req.Agents[0]
	deviceID := req.DeviceID

	history, err := s.transcript.Recent(ctx, deviceID, agent.Type, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	rel, err := s.rels.GetOrCreate(ctx, deviceID, agent.Type, agent.Gender)
	if err != nil {
		return nil, fmt.Errorf("loading relationship: %w", err)
	}
	facts, err := s.memories.RecentFacts(ctx, deviceID, agent.Type, s.cfg.FactLimit)
	if err != nil {
		return nil, fmt.Errorf("loading facts: %w", err)
	}
	currentMood, err := s.moods.GetOrCreate(ctx, deviceID, agent.Type, agent.Gender)
	if err != nil {
		return nil, fmt.Errorf("loading mood: %w", err)
	}
	emotional, err := s.memories.RecentEmotional(ctx, deviceID, agent.Type, s.cfg.EmotionalMemLimit)
	if err != nil {
		return nil, fmt.Errorf("loading emotional memories: %w", err)
	}

	verdict := s.analyzer.Analyze(agent.Type, req.Message, currentMood.MoodValue)
	metrics.MoodEventsTotal.WithLabelValues(string(verdict.Impact)).Inc()

	system := prompt.Solo(prompt.SoloInput{
		Agent:          agent,
		TrustLevel:     rel.TrustLevel,
		MoodValue:      verdict.NewMood,
		RecentActivity: agent.RandomActivity(),
		Facts:          facts,
		Emotional:      emotional,
		Now:            s.now(),
	})

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: system})
	for _, h := range history {
		msgs = append(msgs, llm.Message{Role: h.Role, Content: h.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: req.Message})

	content, err := s.completer.Complete(ctx, "solo", msgs, llm.SoloMaxTokens)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("solo", "error").Inc()
		return nil, fmt.Errorf("solo completion: %w", err)
	}
	if content == "" {
		content = soloFallback
	}

	if err := s.transcript.Append(ctx, deviceID, agent.Type, memory.TranscriptEntry{
		Role: "user", Content: req.Message, Timestamp: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("saving user turn: %w", err)
	}
	if err := s.transcript.Append(ctx, deviceID, agent.Type, memory.TranscriptEntry{
		Role: "assistant", Content: content, CompanionType: agent.Type, Timestamp: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("saving assistant turn: %w", err)
	}

	if err := s.moods.Update(ctx, deviceID, agent.Type, verdict.NewMood, verdict.Impact); err != nil {
		return nil, fmt.Errorf("updating mood: %w", err)
	}
	if _, err := s.memories.RecordIfSignificant(ctx, deviceID, agent.Type, req.Message, verdict.Impact, verdict.Intensity); err != nil {
		return nil, fmt.Errorf("saving emotional memory: %w", err)
	}

	progress, err := s.rels.RecordInteraction(ctx, deviceID, agent.Type)
	if err != nil {
		return nil, fmt.Errorf("recording interaction: %w", err)
	}
	if err := s.challenges.RecordParticipation(ctx, deviceID, agent.Type); err != nil {
		return nil, fmt.Errorf("recording challenge participation: %w", err)
	}

	s.dispatcher.Dispatch(ctx, inats.ExtractionTask{
		DeviceID:      deviceID,
		CompanionType: agent.Type,
		Message:       req.Message,
		ReceivedAt:    s.now(),
	})

	label, displayLevel := relationship.Info(progress.TrustLevel)
	metrics.ChatRequestsTotal.WithLabelValues("solo", "ok").Inc()

	return &SoloResponse{
		Content:      content,
		TrustLevel:   progress.TrustLevel,
		AffectionXP:  progress.AffectionXP,
		NextLevelXP:  progress.NextLevelXP,
		LeveledUp:    progress.LeveledUp,
		Label:        label,
		DisplayLevel: displayLevel,
		Mood: mood.Snapshot{
			Value:  verdict.NewMood,
			State:  mood.ClassifyState(verdict.NewMood),
			Energy: currentMood.Energy,
		},
	}, nil
}

// Group runs one round across every requested companion, in order. Each
// companion sees what earlier companions already said. A failure inside one
// turn degrades to a "..." reply instead of failing the round.
func (s *Service) Group(ctx context.Context, req ChatRequest) (*GroupResponse, error) {
	deviceID := req.DeviceID

	turns := make([]GroupTurn, 0, len(req.Agents))
	var peers []prompt.PeerTurn

	for _, agent := range req.Agents {
		content, err := s.groupTurn(ctx, deviceID, req.Agents, agent, req.Message, peers)
		if err != nil {
			s.logger.Error("group turn failed",
				"device_id", deviceID, "companion_type", agent.Type, "error", err)
			turns = append(turns, GroupTurn{Type: agent.Type, Content: groupFallback, Name: agent.Name})
			continue
		}

		turns = append(turns, GroupTurn{Type: agent.Type, Content: content, Name: agent.Name})
		peers = append(peers, prompt.PeerTurn{Name: agent.Name, Content: content})
	}

	// Extraction keys off the first companion; the facts are about the user,
	// not the companion, so one pass is enough.
	s.dispatcher.Dispatch(ctx, inats.ExtractionTask{
		DeviceID:      deviceID,
		CompanionType: req.Agents[0].Type,
		Message:       req.Message,
		ReceivedAt:    s.now(),
	})

	metrics.ChatRequestsTotal.WithLabelValues("group", "ok").Inc()
	return &GroupResponse{Responses: turns}, nil
}

func (s *Service) groupTurn(ctx context.Context, deviceID string, agents []companion.Agent, agent companion.Agent, message string, peers []prompt.PeerTurn) (string, error) {
	rel, err := s.rels.GetOrCreate(ctx, deviceID, agent.Type, agent.Gender)
	if err != nil {
		return "", fmt.Errorf("loading relationship: %w", err)
	}
	facts, err := s.memories.RecentFacts(ctx, deviceID, agent.Type, s.cfg.FactLimit)
	if err != nil {
		return "", fmt.Errorf("loading facts: %w", err)
	}

	system := prompt.Group(prompt.GroupInput{
		Agents:         agents,
		Current:        agent,
		TrustLevel:     rel.TrustLevel,
		RecentActivity: agent.RandomActivity(),
		Facts:          facts,
		PeerTurns:      peers,
		Now:            s.now(),
	})

	content, err := s.completer.Complete(ctx, "group", []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: message},
	}, llm.GroupMaxTokens)
	if err != nil {
		return "", fmt.Errorf("group completion: %w", err)
	}
	if content == "" {
		content = groupFallback
	}

	if _, err := s.rels.RecordInteraction(ctx, deviceID, agent.Type); err != nil {
		return "", fmt.Errorf("recording interaction: %w", err)
	}
	if err := s.challenges.RecordParticipation(ctx, deviceID, agent.Type); err != nil {
		return "", fmt.Errorf("recording challenge participation: %w", err)
	}
	return content, nil
}
