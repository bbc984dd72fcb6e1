package entities

import (
	"errors"
	"testing"

	"github.com/danarifki/temani/domain"
)

func TestTicTacToeAlternatesTurns(t *testing.T) {
	g := NewTicTacToe(PlayerChild)

	if err := g.Move(PlayerChild, 0, 0); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if g.Next != PlayerCompanion {
		t.Errorf("Expected companion to move next, got %s", g.Next)
	}

	// Same player twice is rejected and the board stays intact.
	if err := g.Move(PlayerChild, 1, 1); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected invalid argument for out-of-turn move, got %v", err)
	}
	if g.Board[1][1] != "" {
		t.Error("Expected rejected move to leave the board untouched")
	}
}

func TestTicTacToeRejectsBadMoves(t *testing.T) {
	g := NewTicTacToe(PlayerChild)
	g.Move(PlayerChild, 0, 0)

	if err := g.Move(PlayerCompanion, 0, 0); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for occupied cell, got %v", err)
	}
	if err := g.Move(PlayerCompanion, 3, 0); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for out-of-range cell, got %v", err)
	}
	if err := g.Move(PlayerCompanion, -1, 1); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for negative cell, got %v", err)
	}

	var stopped TicTacToe
	if err := stopped.Move(PlayerChild, 0, 0); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error before game start, got %v", err)
	}
}

func TestTicTacToeDetectsWin(t *testing.T) {
	g := NewTicTacToe(PlayerChild)
	g.Move(PlayerChild, 0, 0)
	g.Move(PlayerCompanion, 1, 0)
	g.Move(PlayerChild, 0, 1)
	g.Move(PlayerCompanion, 1, 1)
	if err := g.Move(PlayerChild, 0, 2); err != nil {
		t.Fatalf("Winning move failed: %v", err)
	}

	if g.Winner != string(PlayerChild) {
		t.Errorf("Expected X to win, got %q", g.Winner)
	}
	if err := g.Move(PlayerCompanion, 2, 2); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for move after game over, got %v", err)
	}
}

func TestTicTacToeDetectsDraw(t *testing.T) {
	g := NewTicTacToe(PlayerChild)
	// X O X / X O O / O X X leaves no winner.
	moves := []struct {
		p        Player
		row, col int
	}{
		{PlayerChild, 0, 0}, {PlayerCompanion, 0, 1}, {PlayerChild, 0, 2},
		{PlayerCompanion, 1, 1}, {PlayerChild, 1, 0}, {PlayerCompanion, 1, 2},
		{PlayerChild, 2, 1}, {PlayerCompanion, 2, 0}, {PlayerChild, 2, 2},
	}
	for _, m := range moves {
		if err := g.Move(m.p, m.row, m.col); err != nil {
			t.Fatalf("Move (%d,%d) failed: %v", m.row, m.col, err)
		}
	}
	if g.Winner != "draw" {
		t.Errorf("Expected draw, got %q", g.Winner)
	}
}

func TestGuessTheNumber(t *testing.T) {
	if _, err := NewGuessTheNumber(10, 10, 10); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for empty range, got %v", err)
	}
	if _, err := NewGuessTheNumber(1, 10, 42); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for secret outside range, got %v", err)
	}

	g, err := NewGuessTheNumber(1, 100, 42)
	if err != nil {
		t.Fatalf("NewGuessTheNumber failed: %v", err)
	}

	if verdict, _ := g.Guess(10); verdict != -1 {
		t.Errorf("Expected -1 for low guess, got %d", verdict)
	}
	if verdict, _ := g.Guess(90); verdict != 1 {
		t.Errorf("Expected 1 for high guess, got %d", verdict)
	}
	if _, err := g.Guess(500); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for out-of-range guess, got %v", err)
	}
	if verdict, _ := g.Guess(42); verdict != 0 {
		t.Errorf("Expected 0 for correct guess, got %d", verdict)
	}
	if !g.Solved {
		t.Error("Expected game to be solved")
	}
	if g.Guesses != 3 {
		t.Errorf("Expected 3 counted guesses, got %d", g.Guesses)
	}
	if _, err := g.Guess(42); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error after solving, got %v", err)
	}
}

func TestRPSOutcome(t *testing.T) {
	cases := []struct {
		child, companion RPSChoice
		want             string
	}{
		{RPSRock, RPSScissors, "win"},
		{RPSPaper, RPSRock, "win"},
		{RPSScissors, RPSPaper, "win"},
		{RPSRock, RPSPaper, "lose"},
		{RPSPaper, RPSScissors, "lose"},
		{RPSScissors, RPSRock, "lose"},
		{RPSRock, RPSRock, "tie"},
	}
	for _, c := range cases {
		got, err := RPSOutcome(c.child, c.companion)
		if err != nil {
			t.Errorf("RPSOutcome(%s, %s) failed: %v", c.child, c.companion, err)
			continue
		}
		if got != c.want {
			t.Errorf("RPSOutcome(%s, %s) = %s, want %s", c.child, c.companion, got, c.want)
		}
	}

	if _, err := RPSOutcome("lizard", RPSRock); !errors.Is(err, domain.ErrInvalidToolArgument) {
		t.Errorf("Expected error for unknown choice, got %v", err)
	}
}
