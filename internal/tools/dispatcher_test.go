package tools

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
)

type fakeEffects struct {
	mu     sync.Mutex
	games  []string
	ended  int
	canvas []bool
	images []string
}

func (f *fakeEffects) GameUpdated(game string, state any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = append(f.games, game)
}

func (f *fakeEffects) GameEnded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended++
}

func (f *fakeEffects) CanvasVisible(visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canvas = append(f.canvas, visible)
}

func (f *fakeEffects) ImageGenerated(prompt string, img repositories.GeneratedImage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, prompt)
}

type fakeImages struct {
	err error
}

func (f *fakeImages) Generate(ctx context.Context, prompt string, count int) ([]repositories.GeneratedImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []repositories.GeneratedImage{{Data: []byte{0x89, 0x50}, MIMEType: "image/png"}}, nil
}

type resultCollector struct {
	mu      sync.Mutex
	results []repositories.ToolResult
	done    chan struct{}
}

func newResultCollector(expect int) *resultCollector {
	return &resultCollector{done: make(chan struct{}, expect)}
}

func (r *resultCollector) respond(res repositories.ToolResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *resultCollector) wait(t *testing.T, n int) []repositories.ToolResult {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for tool results")
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]repositories.ToolResult, len(r.results))
	copy(out, r.results)
	return out
}

func newTestDispatcher(images repositories.ImageGenerator) (*Dispatcher, *fakeEffects) {
	effects := &fakeEffects{}
	d := NewDispatcher(images, effects, zap.NewNop())
	return d, effects
}

func dispatchOne(t *testing.T, d *Dispatcher, id, name string, args map[string]any) repositories.ToolResult {
	t.Helper()
	collector := newResultCollector(1)
	d.Dispatch(context.Background(), []repositories.ToolCall{{CallID: id, Name: name, Args: args}}, collector.respond)
	results := collector.wait(t, 1)
	return results[0]
}

func TestDispatchStartsAndPlaysTicTacToe(t *testing.T) {
	d, effects := newTestDispatcher(nil)

	res := dispatchOne(t, d, "c1", ToolStartTicTacToe, map[string]any{"first_player": "child"})
	if res.IsError {
		t.Fatalf("startTicTacToe failed: %+v", res.Payload)
	}

	if _, err := d.ChildMove(0, 0); err != nil {
		t.Fatalf("ChildMove failed: %v", err)
	}

	res = dispatchOne(t, d, "c2", ToolAIMakeMove, map[string]any{"row": float64(1), "col": float64(1)})
	if res.IsError {
		t.Fatalf("aiMakeMove failed: %+v", res.Payload)
	}

	board := d.TicTacToe()
	if board == nil {
		t.Fatal("Expected a game in progress")
	}
	if board.Board[0][0] != "X" || board.Board[1][1] != "O" {
		t.Errorf("Unexpected board: %+v", board.Board)
	}
	if len(effects.games) < 3 {
		t.Errorf("Expected a game update per move, got %d", len(effects.games))
	}
}

func TestDispatchRejectsInvalidMoveWithoutMutation(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	dispatchOne(t, d, "c1", ToolStartTicTacToe, nil)

	if _, err := d.ChildMove(0, 0); err != nil {
		t.Fatalf("ChildMove failed: %v", err)
	}

	// The companion tries to take the occupied cell.
	res := dispatchOne(t, d, "c2", ToolAIMakeMove, map[string]any{"row": float64(0), "col": float64(0)})
	if !res.IsError {
		t.Fatal("Expected failure result for occupied cell")
	}
	if success, _ := res.Payload["success"].(bool); success {
		t.Error("Expected success=false payload")
	}

	board := d.TicTacToe()
	if board.Board[0][0] != "X" {
		t.Errorf("Expected board unchanged, got %+v", board.Board)
	}
	if board.Next != entities.PlayerCompanion {
		t.Errorf("Expected companion still to move, got %s", board.Next)
	}
}

func TestDispatchDeduplicatesCallIDs(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	collector := newResultCollector(2)

	calls := []repositories.ToolCall{
		{CallID: "dup", Name: ToolStartTicTacToe},
		{CallID: "dup", Name: ToolStartTicTacToe},
	}
	d.Dispatch(context.Background(), calls, collector.respond)

	results := collector.wait(t, 1)
	if len(results) != 1 {
		t.Errorf("Expected exactly one result for duplicated call id, got %d", len(results))
	}
}

func TestDispatchUnknownToolFails(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	res := dispatchOne(t, d, "c1", "summonDragon", nil)
	if !res.IsError {
		t.Error("Expected failure for unknown tool")
	}
}

func TestDispatchGuessTheNumberFlow(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	d.randInt = func(n int) int { return n / 2 }

	res := dispatchOne(t, d, "c1", ToolStartGuessNumber, map[string]any{"low": float64(1), "high": float64(9)})
	if res.IsError {
		t.Fatalf("startGuessTheNumber failed: %+v", res.Payload)
	}

	// randInt(9)=4 over [1,9] puts the secret at 5.
	res = dispatchOne(t, d, "c2", ToolCheckGuess, map[string]any{"guess": float64(2)})
	if res.IsError {
		t.Fatalf("checkGuess failed: %+v", res.Payload)
	}
	if hint := res.Payload["hint"]; hint != "too_low" {
		t.Errorf("Expected too_low hint, got %v", hint)
	}

	res = dispatchOne(t, d, "c3", ToolCheckGuess, map[string]any{"guess": float64(5)})
	if hint := res.Payload["hint"]; hint != "correct" {
		t.Errorf("Expected correct hint, got %v", hint)
	}
}

func TestDispatchRPSUsesProvidedChoices(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	res := dispatchOne(t, d, "c1", ToolPlayRPS, map[string]any{"ai_choice": "rock", "child_choice": "paper"})
	if res.IsError {
		t.Fatalf("playRPS failed: %+v", res.Payload)
	}
	if outcome := res.Payload["child_outcome"]; outcome != "win" {
		t.Errorf("Expected child win, got %v", outcome)
	}
}

func TestDispatchCanvasToggle(t *testing.T) {
	d, effects := newTestDispatcher(nil)

	dispatchOne(t, d, "c1", ToolShowCanvas, nil)
	if !d.CanvasVisible() {
		t.Error("Expected canvas visible")
	}
	dispatchOne(t, d, "c2", ToolHideCanvas, nil)
	if d.CanvasVisible() {
		t.Error("Expected canvas hidden")
	}
	if len(effects.canvas) != 2 {
		t.Errorf("Expected 2 canvas effects, got %d", len(effects.canvas))
	}
}

func TestDispatchGenerateImageAsync(t *testing.T) {
	d, effects := newTestDispatcher(&fakeImages{})

	res := dispatchOne(t, d, "img1", ToolGenerateImage, map[string]any{"prompt": "a purple dinosaur"})
	if res.IsError {
		t.Fatalf("generateImage failed: %+v", res.Payload)
	}

	effects.mu.Lock()
	defer effects.mu.Unlock()
	if len(effects.images) != 1 || effects.images[0] != "a purple dinosaur" {
		t.Errorf("Expected one image effect, got %v", effects.images)
	}
}

func TestDispatchGenerateImageFailures(t *testing.T) {
	d, _ := newTestDispatcher(&fakeImages{err: errors.New("quota exceeded")})

	res := dispatchOne(t, d, "img1", ToolGenerateImage, map[string]any{"prompt": "anything"})
	if !res.IsError {
		t.Error("Expected failure when provider errors")
	}

	res = dispatchOne(t, d, "img2", ToolGenerateImage, nil)
	if !res.IsError {
		t.Error("Expected failure for missing prompt")
	}
}

func TestDispatchEndGameClearsState(t *testing.T) {
	d, effects := newTestDispatcher(nil)
	dispatchOne(t, d, "c1", ToolStartTicTacToe, nil)

	res := dispatchOne(t, d, "c2", ToolEndGame, nil)
	if res.IsError {
		t.Fatalf("endGame failed: %+v", res.Payload)
	}
	if d.TicTacToe() != nil {
		t.Error("Expected no game after endGame")
	}
	if effects.ended != 1 {
		t.Errorf("Expected one game-ended effect, got %d", effects.ended)
	}

	res = dispatchOne(t, d, "c3", ToolEndGame, nil)
	if !res.IsError {
		t.Error("Expected failure when no game is in progress")
	}
}
