package service

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"aichat_web/internal/llm"
	"aichat_web/internal/models"
)

// ---- 測試替身 ----

type fakeRoomRepo struct {
	room *models.Room
}

func (f *fakeRoomRepo) Create(*models.Room) error { return nil }

func (f *fakeRoomRepo) FindAll() ([]models.Room, error) { return nil, nil }

func (f *fakeRoomRepo) Delete(uint) error { return nil }

func (f *fakeRoomRepo) AddParticipant(*models.RoomParticipant) error { return nil }

func (f *fakeRoomRepo) FindByID(id uint) (*models.Room, error) { return f.FindByIDFull(id) }

func (f *fakeRoomRepo) FindByIDFull(id uint) (*models.Room, error) {
	if f.room == nil || f.room.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.room, nil
}

type fakeMessageRepo struct {
	created []*models.Message
	failErr error
}

func (f *fakeMessageRepo) Create(message *models.Message) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessageRepo) FindByRoomID(uint) ([]models.Message, error) { return nil, nil }

// fakeClient 依序吐出固定的片段，並記錄每次收到的請求
type fakeClient struct {
	chunks   []string
	err      error
	requests [][]llm.ChatMessage
}

func (f *fakeClient) ListModels(context.Context) ([]string, error) { return nil, nil }

func (f *fakeClient) StreamCompletion(ctx context.Context, model string, messages []llm.ChatMessage, temperature float32, onDelta func(string) error) (string, error) {
	f.requests = append(f.requests, messages)
	if f.err != nil {
		return "", f.err
	}
	var sb strings.Builder
	for _, chunk := range f.chunks {
		sb.WriteString(chunk)
		if onDelta != nil {
			if err := onDelta(chunk); err != nil {
				return sb.String(), err
			}
		}
	}
	return sb.String(), nil
}

type fakeResolver struct {
	client llm.Client
}

func (f *fakeResolver) Resolve(string) (*llm.Provider, error) {
	return &llm.Provider{Name: "test", Model: "test-model", Client: f.client}, nil
}

// captureEmitter 記錄所有事件，並可在指定時機觸發副作用
type captureEmitter struct {
	deltas    []string
	messages  []string
	speakers  []string
	completes []int
	errs      []string
	onDelta   func()
	msgErr    error
}

func (c *captureEmitter) EmitDelta(character, delta string) error {
	c.deltas = append(c.deltas, delta)
	if c.onDelta != nil {
		c.onDelta()
	}
	return nil
}

func (c *captureEmitter) EmitMessage(character, content string) error {
	if c.msgErr != nil {
		return c.msgErr
	}
	c.speakers = append(c.speakers, character)
	c.messages = append(c.messages, content)
	return nil
}

func (c *captureEmitter) EmitComplete(totalTurns int) error {
	c.completes = append(c.completes, totalTurns)
	return nil
}

func (c *captureEmitter) EmitError(message string) error {
	c.errs = append(c.errs, message)
	return nil
}

func testRoom() *models.Room {
	alice := makeIdentity(1, "Alice")
	bob := makeIdentity(2, "Bob")
	return &models.Room{
		Model:    gorm.Model{ID: 10},
		Name:     "tavern",
		Scenario: "You are {{char1}}. Other: {{char2}}.",
		Participants: []models.RoomParticipant{
			{RoomID: 10, IdentityID: 1, Identity: alice},
			{RoomID: 10, IdentityID: 2, Identity: bob},
		},
	}
}

func newTestEngine(room *models.Room, client llm.Client, messages *fakeMessageRepo, maxTurns int) *TurnEngine {
	return NewTurnEngine(
		&fakeRoomRepo{room: room},
		messages,
		&fakeResolver{client: client},
		NewWebSocketManager(zerolog.Nop()),
		maxTurns,
		0.7,
		zerolog.Nop(),
	)
}

// ---- RunTurn ----

func TestRunTurnStreamsAndPersists(t *testing.T) {
	room := testRoom()
	client := &fakeClient{chunks: []string{"Hel", "lo ", "there"}}
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(room, client, msgRepo, 10)

	var streamed strings.Builder
	content, err := engine.RunTurn(context.Background(), 10, 2, func(delta string) error {
		streamed.WriteString(delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", content)

	// 串流出去的內容要與持久化的內容完全一致
	assert.Equal(t, content, streamed.String())
	require.Len(t, msgRepo.created, 1)
	assert.Equal(t, content, msgRepo.created[0].Content)
	assert.Equal(t, uint(2), msgRepo.created[0].IdentityID)
	assert.Equal(t, uint(10), msgRepo.created[0].RoomID)
	assert.False(t, msgRepo.created[0].IsUser)

	// 送往模型的請求：system prompt 在最前面且已代入名字
	require.Len(t, client.requests, 1)
	req := client.requests[0]
	require.NotEmpty(t, req)
	assert.Equal(t, llm.RoleSystem, req[0].Role)
	assert.Contains(t, req[0].Content, "You are Bob. Other: Alice.")
	assert.Contains(t, req[0].Content, "Your Character Definition:")
}

func TestRunTurnRoomNotFound(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(testRoom(), &fakeClient{}, msgRepo, 10)

	_, err := engine.RunTurn(context.Background(), 999, 1, nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, msgRepo.created)
}

func TestRunTurnSpeakerNotFound(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(testRoom(), &fakeClient{chunks: []string{"x"}}, msgRepo, 10)

	// 不存在的發言者：回傳 ErrSpeakerNotFound 且不寫入任何訊息
	_, err := engine.RunTurn(context.Background(), 10, 999, nil)
	assert.ErrorIs(t, err, ErrSpeakerNotFound)
	assert.Empty(t, msgRepo.created)
}

func TestRunTurnPersistenceFailureSwallowed(t *testing.T) {
	msgRepo := &fakeMessageRepo{failErr: errors.New("db down")}
	engine := newTestEngine(testRoom(), &fakeClient{chunks: []string{"ok"}}, msgRepo, 10)

	// 寫入失敗只記錄，回合本身仍算完成
	content, err := engine.RunTurn(context.Background(), 10, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
}

// ---- RunCycle ----

func TestRunCycleRoundRobinAndComplete(t *testing.T) {
	room := testRoom()
	client := &fakeClient{chunks: []string{"reply"}}
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(room, client, msgRepo, 10)

	emitter := &captureEmitter{}
	err := engine.RunCycle(context.Background(), 10, 4, emitter)
	require.NoError(t, err)

	// 發言者輪替：空房間從第一位開始
	assert.Equal(t, []string{"Alice", "Bob", "Alice", "Bob"}, emitter.speakers)
	require.Len(t, msgRepo.created, 4)
	assert.Equal(t, []int{4}, emitter.completes)
	assert.Empty(t, emitter.errs)
}

func TestRunCycleStartsAfterExistingHistory(t *testing.T) {
	room := testRoom()
	// 已有一則 Alice 的訊息，下一位應該輪到 Bob
	room.Messages = []models.Message{makeMessage(room.Participants[0].Identity, "opening line")}

	client := &fakeClient{chunks: []string{"reply"}}
	engine := newTestEngine(room, client, &fakeMessageRepo{}, 10)

	emitter := &captureEmitter{}
	err := engine.RunCycle(context.Background(), 10, 2, emitter)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice"}, emitter.speakers)

	// 第一回合 Bob 視角：Alice 的開場白要以名字前綴的 user 訊息出現
	require.NotEmpty(t, client.requests)
	first := client.requests[0]
	require.Len(t, first, 2)
	assert.Equal(t, llm.RoleUser, first[1].Role)
	assert.Equal(t, "Alice: opening line", first[1].Content)
}

func TestRunCycleClampsTurnBudget(t *testing.T) {
	engine := newTestEngine(testRoom(), &fakeClient{chunks: []string{"r"}}, &fakeMessageRepo{}, 3)

	emitter := &captureEmitter{}
	require.NoError(t, engine.RunCycle(context.Background(), 10, 99, emitter))

	// 回合數永遠不超過設定的上限
	require.Len(t, emitter.completes, 1)
	assert.Equal(t, 3, emitter.completes[0])
	assert.Len(t, emitter.messages, 3)
}

func TestRunCycleDefaultTurns(t *testing.T) {
	engine := newTestEngine(testRoom(), &fakeClient{chunks: []string{"r"}}, &fakeMessageRepo{}, 2)

	emitter := &captureEmitter{}
	require.NoError(t, engine.RunCycle(context.Background(), 10, 0, emitter))
	assert.Equal(t, []int{2}, emitter.completes)
}

func TestRunCycleCancelledMidStream(t *testing.T) {
	room := testRoom()
	client := &fakeClient{chunks: []string{"par", "tial", " done"}}
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(room, client, msgRepo, 10)

	ctx, cancel := context.WithCancel(context.Background())
	emitter := &captureEmitter{}
	// 模擬客戶端在第一個片段送出後就離開
	emitter.onDelta = func() { cancel() }

	err := engine.RunCycle(ctx, 10, 5, emitter)
	require.NoError(t, err)

	// 進行中的回合跑完且持久化內容與串流內容一致，之後不再排程新回合
	require.Len(t, msgRepo.created, 1)
	assert.Equal(t, "partial done", msgRepo.created[0].Content)
	assert.Equal(t, msgRepo.created[0].Content, strings.Join(emitter.deltas, ""))
	assert.Len(t, emitter.messages, 1)
	assert.Empty(t, emitter.completes)
}

func TestRunCycleStopsWhenEmitterClosed(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(testRoom(), &fakeClient{chunks: []string{"r"}}, msgRepo, 10)

	emitter := &captureEmitter{msgErr: errors.New("stream closed")}
	err := engine.RunCycle(context.Background(), 10, 5, emitter)
	require.NoError(t, err)

	// 推播失敗視為客戶端離開：第一回合仍有寫入，但不再繼續
	assert.Len(t, msgRepo.created, 1)
	assert.Empty(t, emitter.completes)
}

func TestRunCycleRoomNotFound(t *testing.T) {
	engine := newTestEngine(testRoom(), &fakeClient{}, &fakeMessageRepo{}, 10)

	emitter := &captureEmitter{}
	err := engine.RunCycle(context.Background(), 999, 2, emitter)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	require.Len(t, emitter.errs, 1)
	assert.Equal(t, "Room not found", emitter.errs[0])
}

func TestRunCycleNoParticipants(t *testing.T) {
	room := testRoom()
	room.Participants = nil
	engine := newTestEngine(room, &fakeClient{}, &fakeMessageRepo{}, 10)

	emitter := &captureEmitter{}
	err := engine.RunCycle(context.Background(), 10, 2, emitter)
	assert.ErrorIs(t, err, ErrNoParticipants)
	assert.NotEmpty(t, emitter.errs)
}

func TestRunCycleUpstreamErrorTerminates(t *testing.T) {
	upstream := errors.New("provider unreachable")
	msgRepo := &fakeMessageRepo{}
	engine := newTestEngine(testRoom(), &fakeClient{err: upstream}, msgRepo, 10)

	emitter := &captureEmitter{}
	err := engine.RunCycle(context.Background(), 10, 3, emitter)
	require.Error(t, err)

	// 上游錯誤發出 error 事件並終止整個循環
	require.Len(t, emitter.errs, 1)
	assert.Contains(t, emitter.errs[0], "LLM API call failed")
	assert.Empty(t, emitter.completes)
	assert.Empty(t, msgRepo.created)
}

func TestRunCycleEmptyCompletionFails(t *testing.T) {
	engine := newTestEngine(testRoom(), &fakeClient{err: llm.ErrEmptyCompletion}, &fakeMessageRepo{}, 10)

	emitter := &captureEmitter{}
	err := engine.RunCycle(context.Background(), 10, 1, emitter)
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
	require.Len(t, emitter.errs, 1)
	assert.Contains(t, emitter.errs[0], "empty or null response")
}

func TestRunCyclePersistenceFailureDoesNotStopCycle(t *testing.T) {
	msgRepo := &fakeMessageRepo{failErr: errors.New("db down")}
	engine := newTestEngine(testRoom(), &fakeClient{chunks: []string{"r"}}, msgRepo, 10)

	emitter := &captureEmitter{}
	require.NoError(t, engine.RunCycle(context.Background(), 10, 2, emitter))

	// 寫入全數失敗，但回合照常進行並完成
	assert.Len(t, emitter.messages, 2)
	assert.Equal(t, []int{2}, emitter.completes)
}
