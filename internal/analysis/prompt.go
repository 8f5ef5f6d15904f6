package analysis

// SystemPrompt is sent as the system message by providers that support one
const SystemPrompt = "You are a chess position analyzer that identifies positions from images and returns only valid FEN notation."

// Prompt is the instruction sent alongside every chessboard image
const Prompt = `Extract ONLY the chess position from this image in FEN notation format.
DO NOT suggest moves, analysis, or add any additional text.
DO NOT add any game continuation or suggested moves.
DO NOT analyze the position or describe it.
ONLY return the raw FEN string representing the exact position shown.
If the board orientation is ambiguous, assume White is playing from the bottom.
Return ONLY the FEN string with no additional words or characters.`

const (
	// DefaultTemperature keeps replies close to deterministic
	DefaultTemperature = 0.1
	// DefaultMaxTokens bounds the reply length
	DefaultMaxTokens = 1000
)
