package tools

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/danarifki/temani/domain/repositories"
)

// Tool names the dispatcher resolves.
const (
	ToolStartTicTacToe   = "startTicTacToe"
	ToolAIMakeMove       = "aiMakeMove"
	ToolResetGame        = "resetGame"
	ToolEndGame          = "endGame"
	ToolStartGuessNumber = "startGuessTheNumber"
	ToolCheckGuess       = "checkGuess"
	ToolPlayRPS          = "playRockPaperScissors"
	ToolShowCanvas       = "showDrawingCanvas"
	ToolHideCanvas       = "hideDrawingCanvas"
	ToolGenerateImage    = "generateImage"
)

// Manifest declares every tool the companion can invoke, with typed
// parameter schemas. The declarations are handed to the realtime session at
// connect time.
func Manifest() []repositories.ToolDeclaration {
	cell := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "integer", Description: desc}
	}
	return []repositories.ToolDeclaration{
		{
			Name:        ToolStartTicTacToe,
			Description: "Start a tic-tac-toe game with the child. The child plays X, you play O.",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"first_player": {
						Type:        "string",
						Description: "Who moves first.",
						Enum:        []any{"child", "companion"},
					},
				},
			},
		},
		{
			Name:        ToolAIMakeMove,
			Description: "Place your O mark on the tic-tac-toe board.",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"row": cell("Row index, 0 to 2."),
					"col": cell("Column index, 0 to 2."),
				},
				Required: []string{"row", "col"},
			},
		},
		{
			Name:        ToolResetGame,
			Description: "Restart the current game from the beginning.",
			Parameters:  &jsonschema.Schema{Type: "object"},
		},
		{
			Name:        ToolEndGame,
			Description: "End the current game and return to free conversation.",
			Parameters:  &jsonschema.Schema{Type: "object"},
		},
		{
			Name:        ToolStartGuessNumber,
			Description: "Start a guess-the-number game. A secret number is chosen in the given range.",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"low":  cell("Lowest possible number, inclusive."),
					"high": cell("Highest possible number, inclusive."),
				},
				Required: []string{"low", "high"},
			},
		},
		{
			Name:        ToolCheckGuess,
			Description: "Check the child's guess against the secret number.",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"guess": cell("The number the child guessed."),
				},
				Required: []string{"guess"},
			},
		},
		{
			Name:        ToolPlayRPS,
			Description: "Play one round of rock-paper-scissors. Call this after the child has locked in their choice on screen.",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"ai_choice": {
						Type:        "string",
						Description: "Your throw for this round.",
						Enum:        []any{"rock", "paper", "scissors"},
					},
				},
				Required: []string{"ai_choice"},
			},
		},
		{
			Name:        ToolShowCanvas,
			Description: "Show the drawing canvas so the child can draw a picture for you.",
			Parameters:  &jsonschema.Schema{Type: "object"},
		},
		{
			Name:        ToolHideCanvas,
			Description: "Hide the drawing canvas.",
			Parameters:  &jsonschema.Schema{Type: "object"},
		},
		{
			Name:        ToolGenerateImage,
			Description: "Generate a picture from a description and show it to the child.",
			Parameters: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"prompt": {
						Type:        "string",
						Description: "What the picture should show.",
					},
				},
				Required: []string{"prompt"},
			},
		},
	}
}
