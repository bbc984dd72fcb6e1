// Package tools interprets model-initiated function calls against local UI
// and game state and produces exactly one result per call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danarifki/temani/domain"
	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
)

// Effects is the UI-facing side of tool execution. Implementations render
// game boards, toggle the drawing canvas, and show generated images.
type Effects interface {
	GameUpdated(game string, state any)
	GameEnded()
	CanvasVisible(visible bool)
	ImageGenerated(prompt string, img repositories.GeneratedImage)
}

// Dispatcher owns the local game and canvas state and resolves tool-call
// batches from the realtime session. Image generation resolves
// asynchronously and never blocks other calls in the same batch.
type Dispatcher struct {
	images  repositories.ImageGenerator
	effects Effects
	logger  *zap.Logger

	mu            sync.Mutex
	ticTacToe     *entities.TicTacToe
	guessGame     *entities.GuessTheNumber
	canvasVisible bool
	resolved      map[string]bool

	randInt func(n int) int
}

// NewDispatcher creates a dispatcher with no game in progress.
func NewDispatcher(images repositories.ImageGenerator, effects Effects, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		images:   images,
		effects:  effects,
		logger:   logger,
		resolved: make(map[string]bool),
		randInt:  rand.New(rand.NewSource(time.Now().UnixNano())).Intn,
	}
}

// Dispatch resolves every call in the batch, invoking respond exactly once
// per call id. Synchronous tools respond before Dispatch returns;
// generateImage responds from its own goroutine when the provider finishes.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []repositories.ToolCall, respond func(repositories.ToolResult)) {
	for _, call := range calls {
		d.mu.Lock()
		if d.resolved[call.CallID] {
			d.mu.Unlock()
			d.logger.Warn("Duplicate tool call ignored",
				zap.String("callID", call.CallID),
				zap.String("tool", call.Name))
			continue
		}
		d.resolved[call.CallID] = true
		d.mu.Unlock()

		if call.Name == ToolGenerateImage {
			go d.generateImage(ctx, call, respond)
			continue
		}

		payload, err := d.execute(call)
		respond(d.result(call, payload, err))
	}
}

// result converts a handler outcome into the tool result relayed to the
// model. Failures become failure payloads so the model's turn never stalls.
func (d *Dispatcher) result(call repositories.ToolCall, payload map[string]any, err error) repositories.ToolResult {
	if err != nil {
		d.logger.Warn("Tool call failed",
			zap.String("callID", call.CallID),
			zap.String("tool", call.Name),
			zap.Error(err))
		return repositories.ToolResult{
			CallID:  call.CallID,
			Name:    call.Name,
			Payload: map[string]any{"success": false, "error": err.Error()},
			IsError: true,
		}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true
	return repositories.ToolResult{CallID: call.CallID, Name: call.Name, Payload: payload}
}

func (d *Dispatcher) execute(call repositories.ToolCall) (map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch call.Name {
	case ToolStartTicTacToe:
		return d.startTicTacToe(call.Args)
	case ToolAIMakeMove:
		return d.aiMakeMove(call.Args)
	case ToolResetGame:
		return d.resetGame()
	case ToolEndGame:
		return d.endGame()
	case ToolStartGuessNumber:
		return d.startGuessNumber(call.Args)
	case ToolCheckGuess:
		return d.checkGuess(call.Args)
	case ToolPlayRPS:
		return d.playRPS(call.Args)
	case ToolShowCanvas:
		d.canvasVisible = true
		d.effects.CanvasVisible(true)
		return nil, nil
	case ToolHideCanvas:
		d.canvasVisible = false
		d.effects.CanvasVisible(false)
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}
}

func (d *Dispatcher) startTicTacToe(args map[string]any) (map[string]any, error) {
	first := entities.PlayerChild
	if v, _ := args["first_player"].(string); v == "companion" {
		first = entities.PlayerCompanion
	}
	d.ticTacToe = entities.NewTicTacToe(first)
	d.effects.GameUpdated("tic_tac_toe", *d.ticTacToe)
	return map[string]any{"board": d.ticTacToe.Board, "next": d.ticTacToe.Next}, nil
}

func (d *Dispatcher) aiMakeMove(args map[string]any) (map[string]any, error) {
	if d.ticTacToe == nil {
		return nil, fmt.Errorf("%w: no tic-tac-toe game in progress", domain.ErrInvalidToolArgument)
	}
	row, ok1 := intArg(args, "row")
	col, ok2 := intArg(args, "col")
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: row and col are required", domain.ErrInvalidToolArgument)
	}
	if err := d.ticTacToe.Move(entities.PlayerCompanion, row, col); err != nil {
		return nil, err
	}
	d.effects.GameUpdated("tic_tac_toe", *d.ticTacToe)
	return map[string]any{"board": d.ticTacToe.Board, "winner": d.ticTacToe.Winner}, nil
}

func (d *Dispatcher) resetGame() (map[string]any, error) {
	switch {
	case d.ticTacToe != nil:
		d.ticTacToe = entities.NewTicTacToe(entities.PlayerChild)
		d.effects.GameUpdated("tic_tac_toe", *d.ticTacToe)
		return map[string]any{"board": d.ticTacToe.Board}, nil
	case d.guessGame != nil:
		fresh, err := entities.NewGuessTheNumber(d.guessGame.Low, d.guessGame.High, d.randBetween(d.guessGame.Low, d.guessGame.High))
		if err != nil {
			return nil, err
		}
		d.guessGame = fresh
		d.effects.GameUpdated("guess_the_number", *d.guessGame)
		return map[string]any{"low": fresh.Low, "high": fresh.High}, nil
	default:
		return nil, fmt.Errorf("%w: no game to reset", domain.ErrInvalidToolArgument)
	}
}

func (d *Dispatcher) endGame() (map[string]any, error) {
	if d.ticTacToe == nil && d.guessGame == nil {
		return nil, fmt.Errorf("%w: no game in progress", domain.ErrInvalidToolArgument)
	}
	d.ticTacToe = nil
	d.guessGame = nil
	d.effects.GameEnded()
	return nil, nil
}

func (d *Dispatcher) startGuessNumber(args map[string]any) (map[string]any, error) {
	low, ok1 := intArg(args, "low")
	high, ok2 := intArg(args, "high")
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: low and high are required", domain.ErrInvalidToolArgument)
	}
	game, err := entities.NewGuessTheNumber(low, high, d.randBetween(low, high))
	if err != nil {
		return nil, err
	}
	d.guessGame = game
	d.effects.GameUpdated("guess_the_number", *game)
	return map[string]any{"low": low, "high": high}, nil
}

func (d *Dispatcher) checkGuess(args map[string]any) (map[string]any, error) {
	if d.guessGame == nil {
		return nil, fmt.Errorf("%w: no guessing game in progress", domain.ErrInvalidToolArgument)
	}
	guess, ok := intArg(args, "guess")
	if !ok {
		return nil, fmt.Errorf("%w: guess is required", domain.ErrInvalidToolArgument)
	}
	verdict, err := d.guessGame.Guess(guess)
	if err != nil {
		return nil, err
	}
	d.effects.GameUpdated("guess_the_number", *d.guessGame)
	hint := "correct"
	if verdict < 0 {
		hint = "too_low"
	} else if verdict > 0 {
		hint = "too_high"
	}
	return map[string]any{"hint": hint, "guesses": d.guessGame.Guesses}, nil
}

func (d *Dispatcher) playRPS(args map[string]any) (map[string]any, error) {
	aiChoice := entities.RPSChoice(stringArg(args, "ai_choice"))
	childChoice := entities.RPSChoice(stringArg(args, "child_choice"))
	if childChoice == "" {
		choices := []entities.RPSChoice{entities.RPSRock, entities.RPSPaper, entities.RPSScissors}
		childChoice = choices[d.randInt(len(choices))]
	}
	outcome, err := entities.RPSOutcome(childChoice, aiChoice)
	if err != nil {
		return nil, err
	}
	d.effects.GameUpdated("rock_paper_scissors", map[string]any{
		"child":     childChoice,
		"companion": aiChoice,
		"outcome":   outcome,
	})
	return map[string]any{"child_choice": childChoice, "child_outcome": outcome}, nil
}

// generateImage awaits the provider, which can take several seconds, and
// only then emits the tool result.
func (d *Dispatcher) generateImage(ctx context.Context, call repositories.ToolCall, respond func(repositories.ToolResult)) {
	prompt := stringArg(call.Args, "prompt")
	if prompt == "" {
		respond(d.result(call, nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidToolArgument)))
		return
	}
	if d.images == nil {
		respond(d.result(call, nil, errors.New("image generation is not configured")))
		return
	}
	imgs, err := d.images.Generate(ctx, prompt, 1)
	if err != nil {
		respond(d.result(call, nil, fmt.Errorf("generate image: %w", err)))
		return
	}
	if len(imgs) == 0 {
		respond(d.result(call, nil, errors.New("provider returned no image")))
		return
	}
	d.effects.ImageGenerated(prompt, imgs[0])
	respond(d.result(call, map[string]any{"shown": true}, nil))
}

// randBetween picks an int in [low, high].
func (d *Dispatcher) randBetween(low, high int) int {
	return low + d.randInt(high-low+1)
}

// ChildMove applies the child's own tic-tac-toe move, initiated from the
// board UI rather than a model tool call.
func (d *Dispatcher) ChildMove(row, col int) (*entities.TicTacToe, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ticTacToe == nil {
		return nil, fmt.Errorf("%w: no tic-tac-toe game in progress", domain.ErrInvalidToolArgument)
	}
	if err := d.ticTacToe.Move(entities.PlayerChild, row, col); err != nil {
		return nil, err
	}
	d.effects.GameUpdated("tic_tac_toe", *d.ticTacToe)
	copied := *d.ticTacToe
	return &copied, nil
}

// CanvasVisible reports the drawing canvas visibility.
func (d *Dispatcher) CanvasVisible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvasVisible
}

// TicTacToe exposes the current board for rendering, or nil.
func (d *Dispatcher) TicTacToe() *entities.TicTacToe {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ticTacToe == nil {
		return nil
	}
	copied := *d.ticTacToe
	return &copied
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
