package entities

import (
	"fmt"

	"github.com/danarifki/temani/domain"
)

// Player is a tic-tac-toe mark. The child always plays X, the companion O.
type Player string

const (
	PlayerChild     Player = "X"
	PlayerCompanion Player = "O"
)

// TicTacToe is the 3x3 board state. Moves are validated against the board
// before any mutation; an invalid move leaves the state untouched.
type TicTacToe struct {
	Board   [3][3]string `json:"board"`
	Next    Player       `json:"next"`
	Winner  string       `json:"winner,omitempty"` // "X", "O", or "draw"
	Started bool         `json:"started"`
}

// NewTicTacToe starts a fresh game with the given first player.
func NewTicTacToe(first Player) *TicTacToe {
	return &TicTacToe{Next: first, Started: true}
}

// Move places the player's mark at (row, col).
func (g *TicTacToe) Move(p Player, row, col int) error {
	if !g.Started {
		return fmt.Errorf("%w: no game in progress", domain.ErrInvalidToolArgument)
	}
	if g.Winner != "" {
		return fmt.Errorf("%w: game is already over", domain.ErrInvalidToolArgument)
	}
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return fmt.Errorf("%w: cell (%d,%d) is out of range", domain.ErrInvalidToolArgument, row, col)
	}
	if g.Board[row][col] != "" {
		return fmt.Errorf("%w: cell (%d,%d) is occupied", domain.ErrInvalidToolArgument, row, col)
	}
	if g.Next != p {
		return fmt.Errorf("%w: it is not %s's turn", domain.ErrInvalidToolArgument, p)
	}

	g.Board[row][col] = string(p)
	if winner, over := g.outcome(); over {
		g.Winner = winner
	}
	if p == PlayerChild {
		g.Next = PlayerCompanion
	} else {
		g.Next = PlayerChild
	}
	return nil
}

// outcome returns the winner mark, or "draw", once the game is decided.
func (g *TicTacToe) outcome() (string, bool) {
	lines := [][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}
	for _, line := range lines {
		a, b, c := g.Board[line[0][0]][line[0][1]], g.Board[line[1][0]][line[1][1]], g.Board[line[2][0]][line[2][1]]
		if a != "" && a == b && b == c {
			return a, true
		}
	}
	for _, row := range g.Board {
		for _, cell := range row {
			if cell == "" {
				return "", false
			}
		}
	}
	return "draw", true
}

// GuessTheNumber is the number-guessing game: the companion picks a secret
// between Low and High and rates the child's guesses.
type GuessTheNumber struct {
	Low     int  `json:"low"`
	High    int  `json:"high"`
	Secret  int  `json:"-"`
	Guesses int  `json:"guesses"`
	Solved  bool `json:"solved"`
	Started bool `json:"started"`
}

// NewGuessTheNumber starts a game over the inclusive range [low, high].
func NewGuessTheNumber(low, high, secret int) (*GuessTheNumber, error) {
	if low >= high {
		return nil, fmt.Errorf("%w: range [%d,%d] is empty", domain.ErrInvalidToolArgument, low, high)
	}
	if secret < low || secret > high {
		return nil, fmt.Errorf("%w: secret %d outside [%d,%d]", domain.ErrInvalidToolArgument, secret, low, high)
	}
	return &GuessTheNumber{Low: low, High: high, Secret: secret, Started: true}, nil
}

// Guess rates one guess: -1 too low, 0 correct, 1 too high.
func (g *GuessTheNumber) Guess(n int) (int, error) {
	if !g.Started || g.Solved {
		return 0, fmt.Errorf("%w: no guessing game in progress", domain.ErrInvalidToolArgument)
	}
	if n < g.Low || n > g.High {
		return 0, fmt.Errorf("%w: guess %d outside [%d,%d]", domain.ErrInvalidToolArgument, n, g.Low, g.High)
	}
	g.Guesses++
	switch {
	case n < g.Secret:
		return -1, nil
	case n > g.Secret:
		return 1, nil
	default:
		g.Solved = true
		return 0, nil
	}
}

// RPSChoice is one rock-paper-scissors throw.
type RPSChoice string

const (
	RPSRock     RPSChoice = "rock"
	RPSPaper    RPSChoice = "paper"
	RPSScissors RPSChoice = "scissors"
)

// Valid reports whether the choice is one of the three throws.
func (c RPSChoice) Valid() bool {
	return c == RPSRock || c == RPSPaper || c == RPSScissors
}

// RPSOutcome resolves one round from the child's perspective:
// "win", "lose", or "tie".
func RPSOutcome(child, companion RPSChoice) (string, error) {
	if !child.Valid() || !companion.Valid() {
		return "", fmt.Errorf("%w: choices must be rock, paper, or scissors", domain.ErrInvalidToolArgument)
	}
	if child == companion {
		return "tie", nil
	}
	beats := map[RPSChoice]RPSChoice{
		RPSRock:     RPSScissors,
		RPSPaper:    RPSRock,
		RPSScissors: RPSPaper,
	}
	if beats[child] == companion {
		return "win", nil
	}
	return "lose", nil
}
