package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtype-app/mindtype-server/internal/challenge"
	"github.com/mindtype-app/mindtype-server/internal/companion"
	"github.com/mindtype-app/mindtype-server/internal/config"
	"github.com/mindtype-app/mindtype-server/internal/llm"
	"github.com/mindtype-app/mindtype-server/internal/memory"
	"github.com/mindtype-app/mindtype-server/internal/mood"
	inats "github.com/mindtype-app/mindtype-server/internal/nats"
	"github.com/mindtype-app/mindtype-server/internal/relationship"
)

// In-memory repositories backing the pipeline under test.

type memRelRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*relationship.Relationship
}

func newMemRelRepo() *memRelRepo {
	return &memRelRepo{rows: make(map[uuid.UUID]*relationship.Relationship)}
}

func (r *memRelRepo) Get(_ context.Context, deviceID, companionType string) (*relationship.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rel := range r.rows {
		if rel.DeviceID == deviceID && rel.CompanionType == companionType {
			cp := *rel
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRelRepo) Create(_ context.Context, rel *relationship.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel.ID = uuid.New()
	rel.LastInteractionAt = time.Now()
	cp := *rel
	r.rows[rel.ID] = &cp
	return nil
}

func (r *memRelRepo) UpdateProgress(_ context.Context, id uuid.UUID, trustLevel, affectionXP int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[id].TrustLevel = trustLevel
	r.rows[id].AffectionXP = affectionXP
	return nil
}

func (r *memRelRepo) RecordInteraction(_ context.Context, id uuid.UUID, trustLevel, affectionXP, messageCount int, lastInteractionAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.rows[id]
	row.TrustLevel = trustLevel
	row.AffectionXP = affectionXP
	row.MessageCount = messageCount
	row.LastInteractionAt = lastInteractionAt
	return nil
}

type memMoodRepo struct {
	rows map[string]*mood.Mood
}

func newMemMoodRepo() *memMoodRepo {
	return &memMoodRepo{rows: make(map[string]*mood.Mood)}
}

func (r *memMoodRepo) Get(_ context.Context, deviceID, companionType string) (*mood.Mood, error) {
	if m, ok := r.rows[deviceID+"/"+companionType]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *memMoodRepo) Create(_ context.Context, m *mood.Mood) error {
	m.ID = uuid.New()
	cp := *m
	r.rows[m.DeviceID+"/"+m.CompanionType] = &cp
	return nil
}

func (r *memMoodRepo) Update(_ context.Context, deviceID, companionType string, moodValue, energy int) error {
	row := r.rows[deviceID+"/"+companionType]
	row.MoodValue = moodValue
	row.Energy = energy
	return nil
}

type memEmoRepo struct {
	created []memory.EmotionalMemory
}

func (r *memEmoRepo) Create(_ context.Context, mem *memory.EmotionalMemory) error {
	r.created = append(r.created, *mem)
	return nil
}

func (r *memEmoRepo) ListRecent(_ context.Context, deviceID, companionType string, limit int) ([]memory.EmotionalMemory, error) {
	var out []memory.EmotionalMemory
	for i := len(r.created) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.created[i]
		if m.DeviceID == deviceID && m.CompanionType == companionType {
			out = append(out, m)
		}
	}
	return out, nil
}

type memFactRepo struct {
	created []memory.FactMemory
}

func (r *memFactRepo) Create(_ context.Context, fact *memory.FactMemory) error {
	r.created = append(r.created, *fact)
	return nil
}

func (r *memFactRepo) ListRecent(_ context.Context, deviceID, companionType string, limit int) ([]memory.FactMemory, error) {
	var out []memory.FactMemory
	for i := len(r.created) - 1; i >= 0 && len(out) < limit; i-- {
		f := r.created[i]
		if f.DeviceID == deviceID && f.CompanionType == companionType {
			out = append(out, f)
		}
	}
	return out, nil
}

type memChallengeRepo struct {
	rows map[uuid.UUID]*challenge.Challenge
}

func newMemChallengeRepo() *memChallengeRepo {
	return &memChallengeRepo{rows: make(map[uuid.UUID]*challenge.Challenge)}
}

func (r *memChallengeRepo) Get(_ context.Context, deviceID string, weekStart time.Time) (*challenge.Challenge, error) {
	for _, ch := range r.rows {
		if ch.DeviceID == deviceID && ch.WeekStart.Equal(weekStart) {
			cp := *ch
			cp.CompanionsChatted = append([]string(nil), ch.CompanionsChatted...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memChallengeRepo) Create(_ context.Context, ch *challenge.Challenge) error {
	ch.ID = uuid.New()
	cp := *ch
	r.rows[ch.ID] = &cp
	return nil
}

func (r *memChallengeRepo) UpdateChatted(_ context.Context, id uuid.UUID, chatted []string) error {
	r.rows[id].CompanionsChatted = chatted
	return nil
}

func (r *memChallengeRepo) MarkClaimed(_ context.Context, id uuid.UUID) error {
	r.rows[id].Claimed = true
	return nil
}

// scriptedCompleter returns canned replies and records every call.
type scriptedCompleter struct {
	replies []string
	errs    []error
	calls   [][]llm.Message
	ops     []string
}

func (c *scriptedCompleter) Complete(_ context.Context, op string, messages []llm.Message, _ int) (string, error) {
	i := len(c.calls)
	c.calls = append(c.calls, messages)
	c.ops = append(c.ops, op)
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	reply := ""
	if i < len(c.replies) {
		reply = c.replies[i]
	}
	return reply, err
}

type captureDispatcher struct {
	tasks []inats.ExtractionTask
}

func (d *captureDispatcher) Dispatch(_ context.Context, task inats.ExtractionTask) {
	d.tasks = append(d.tasks, task)
}

type pipeline struct {
	svc        *Service
	rels       *relationship.Service
	moods      *mood.Service
	challenges *challenge.Service
	completer  *scriptedCompleter
	dispatcher *captureDispatcher
	relRepo    *memRelRepo
	moodRepo   *memMoodRepo
	emoRepo    *memEmoRepo
	factRepo   *memFactRepo
	chRepo     *memChallengeRepo
	transcript *memory.TranscriptStore
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p := &pipeline{
		completer:  &scriptedCompleter{},
		dispatcher: &captureDispatcher{},
		relRepo:    newMemRelRepo(),
		moodRepo:   newMemMoodRepo(),
		emoRepo:    &memEmoRepo{},
		factRepo:   &memFactRepo{},
		chRepo:     newMemChallengeRepo(),
		transcript: memory.NewTranscriptStore(client, 200, time.Hour),
	}

	p.rels = relationship.NewService(p.relRepo)
	p.moods = mood.NewService(p.moodRepo)
	p.challenges = challenge.NewService(p.chRepo, p.rels, slog.Default())
	memories := memory.NewService(p.emoRepo, p.factRepo)
	p.svc = NewService(ServiceDeps{
		Relationships: p.rels,
		Moods:         p.moods,
		Analyzer:      mood.NewAnalyzer(companion.DefaultLexicons()),
		Memories:      memories,
		Transcript:    p.transcript,
		Challenges:    p.challenges,
		Completer:     p.completer,
		Dispatcher:    p.dispatcher,
		Config: config.ChatConfig{
			HistoryLimit:      20,
			FactLimit:         10,
			EmotionalMemLimit: 5,
		},
		Logger: slog.Default(),
	})
	return p
}

func soloRequest(message string) ChatRequest {
	return ChatRequest{
		Message:  message,
		DeviceID: "device-1",
		Agents: []companion.Agent{{
			Type:       "INTJ",
			Gender:     "female",
			Name:       "Vera",
			Ambition:   "build a research lab",
			Desires:    []string{"finish her thesis"},
			Activities: []string{"reading"},
		}},
	}
}

func TestSolo_HappyPath(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"Tell me more about that."}
	ctx := context.Background()

	resp, err := p.svc.Solo(ctx, soloRequest("hello there"))
	require.NoError(t, err)

	assert.Equal(t, "Tell me more about that.", resp.Content)
	assert.Equal(t, 1, resp.TrustLevel)
	assert.Equal(t, 10, resp.AffectionXP)
	assert.Equal(t, 100, resp.NextLevelXP)
	assert.False(t, resp.LeveledUp)
	assert.Equal(t, "Stranger", resp.Label)
	assert.Equal(t, mood.StateNeutral, resp.Mood.State)
	assert.Equal(t, 50, resp.Mood.Energy)

	// Both turns landed in the transcript.
	entries, err := p.transcript.Recent(ctx, "device-1", "INTJ", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].Role)
	assert.Equal(t, "hello there", entries[0].Content)
	assert.Equal(t, "assistant", entries[1].Role)

	// Extraction dispatched once.
	require.Len(t, p.dispatcher.tasks, 1)
	assert.Equal(t, "hello there", p.dispatcher.tasks[0].Message)

	// Challenge participation recorded.
	ch, err := p.chRepo.Get(ctx, "device-1", challenge.WeekStart(time.Now()))
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, []string{"INTJ"}, ch.CompanionsChatted)
}

func TestSolo_MoodVerdictFlowsIntoPromptAndLedger(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"Hm."}
	ctx := context.Background()

	// One INTJ irritant at fresh mood 0: intensity 2, mood -16. The analyzed
	// value must reach both the prompt and the ledger.
	_, err := p.svc.Solo(ctx, soloRequest("that is completely illogical"))
	require.NoError(t, err)

	require.Len(t, p.completer.calls, 1)
	system := p.completer.calls[0][0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "balanced state") // -16 is still the neutral band

	m, err := p.moodRepo.Get(ctx, "device-1", "INTJ")
	require.NoError(t, err)
	assert.Equal(t, -16, m.MoodValue)
	assert.Equal(t, 45, m.Energy)

	// Intensity 2 negative message becomes an emotional memory.
	require.Len(t, p.emoRepo.created, 1)
	assert.Equal(t, mood.ImpactNegative, p.emoRepo.created[0].Impact)
	assert.Equal(t, 2, p.emoRepo.created[0].Intensity)
}

func TestSolo_HistoryPrecedesUserTurn(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"First reply.", "Second reply."}
	ctx := context.Background()

	_, err := p.svc.Solo(ctx, soloRequest("opening message"))
	require.NoError(t, err)
	_, err = p.svc.Solo(ctx, soloRequest("follow up"))
	require.NoError(t, err)

	msgs := p.completer.calls[1]
	require.Len(t, msgs, 4) // system + 2 history turns + new user turn
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "opening message", msgs[1].Content)
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "First reply.", msgs[2].Content)
	assert.Equal(t, "follow up", msgs[3].Content)
}

func TestSolo_EmptyCompletionFallsBack(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{""}

	resp, err := p.svc.Solo(context.Background(), soloRequest("hello"))
	require.NoError(t, err)
	assert.Equal(t, "I'm not sure how to respond to that.", resp.Content)
}

func TestSolo_CompletionErrorFailsRound(t *testing.T) {
	p := newPipeline(t)
	p.completer.errs = []error{errors.New("upstream down")}
	ctx := context.Background()

	_, err := p.svc.Solo(ctx, soloRequest("hello"))
	require.Error(t, err)

	// No side effects: transcript stays empty, no XP granted.
	entries, terr := p.transcript.Recent(ctx, "device-1", "INTJ", 10)
	require.NoError(t, terr)
	assert.Empty(t, entries)

	rel, rerr := p.relRepo.Get(ctx, "device-1", "INTJ")
	require.NoError(t, rerr)
	require.NotNil(t, rel) // created while assembling context
	assert.Equal(t, 0, rel.AffectionXP)
	assert.Empty(t, p.dispatcher.tasks)
}

func groupRequest(message string) ChatRequest {
	return ChatRequest{
		Message:     message,
		DeviceID:    "device-1",
		IsGroupChat: true,
		Agents: []companion.Agent{
			{Type: "INTJ", Gender: "female", Name: "Vera", Ambition: "build a lab", Desires: []string{"quiet"}, Activities: []string{"reading"}},
			{Type: "ENFP", Gender: "male", Name: "Milo", Ambition: "start a band", Desires: []string{"jam"}, Activities: []string{"tuning a guitar"}},
			{Type: "ISTP", Gender: "female", Name: "Ida", Ambition: "restore a bike", Desires: []string{"garage time"}, Activities: []string{"wrenching"}},
		},
	}
}

func TestGroup_EveryAgentAnswersInOrder(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"Plan first.", "Or just wing it!", "Either works."}
	ctx := context.Background()

	resp, err := p.svc.Group(ctx, groupRequest("what should we do this weekend?"))
	require.NoError(t, err)

	require.Len(t, resp.Responses, 3)
	assert.Equal(t, GroupTurn{Type: "INTJ", Content: "Plan first.", Name: "Vera"}, resp.Responses[0])
	assert.Equal(t, GroupTurn{Type: "ENFP", Content: "Or just wing it!", Name: "Milo"}, resp.Responses[1])
	assert.Equal(t, GroupTurn{Type: "ISTP", Content: "Either works.", Name: "Ida"}, resp.Responses[2])

	// Later agents see earlier replies.
	assert.NotContains(t, p.completer.calls[0][0].Content, "WHAT OTHERS JUST SAID")
	assert.Contains(t, p.completer.calls[1][0].Content, `Vera: "Plan first."`)
	assert.Contains(t, p.completer.calls[2][0].Content, `Milo: "Or just wing it!"`)

	// All three relationships gained XP and the challenge sees three types.
	ch, err := p.chRepo.Get(ctx, "device-1", challenge.WeekStart(time.Now()))
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Len(t, ch.CompanionsChatted, 3)

	// One extraction pass, keyed to the first companion.
	require.Len(t, p.dispatcher.tasks, 1)
	assert.Equal(t, "INTJ", p.dispatcher.tasks[0].CompanionType)
}

func TestGroup_FailedTurnDegradesToEllipsis(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"Plan first.", "", "Either works."}
	p.completer.errs = []error{nil, errors.New("upstream hiccup"), nil}

	resp, err := p.svc.Group(context.Background(), groupRequest("hello all"))
	require.NoError(t, err)

	require.Len(t, resp.Responses, 3)
	assert.Equal(t, "...", resp.Responses[1].Content)
	assert.Equal(t, "Milo", resp.Responses[1].Name)

	// The failed turn is not echoed to the next companion.
	assert.Contains(t, p.completer.calls[2][0].Content, `Vera: "Plan first."`)
	assert.NotContains(t, p.completer.calls[2][0].Content, "Milo:")
}

func TestGroup_DoesNotTouchTranscriptOrMood(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"a", "b", "c"}
	ctx := context.Background()

	_, err := p.svc.Group(ctx, groupRequest("hey"))
	require.NoError(t, err)

	for _, typ := range []string{"INTJ", "ENFP", "ISTP"} {
		entries, terr := p.transcript.Recent(ctx, "device-1", typ, 10)
		require.NoError(t, terr)
		assert.Empty(t, entries)

		m, merr := p.moodRepo.Get(ctx, "device-1", typ)
		require.NoError(t, merr)
		assert.Nil(t, m)
	}
}

func TestSolo_PromptCarriesStoredFacts(t *testing.T) {
	p := newPipeline(t)
	p.completer.replies = []string{"Noted."}
	ctx := context.Background()

	require.NoError(t, p.factRepo.Create(ctx, &memory.FactMemory{
		DeviceID: "device-1", CompanionType: "INTJ",
		MemoryType: "job", MemoryContent: "works as a nurse",
	}))

	_, err := p.svc.Solo(ctx, soloRequest("long day today"))
	require.NoError(t, err)

	system := p.completer.calls[0][0].Content
	assert.True(t, strings.Contains(system, "Things you know about them:"))
	assert.Contains(t, system, "- works as a nurse")
}
