package config

const (
	DefaultProvider  = "gemini"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMaxRounds       = 10
	DefaultModelTimeout    = 60 // seconds
	DefaultToolTimeout     = 30 // seconds
	DefaultToolConcurrency = 4

	DefaultMaxRetries       = 3
	DefaultRetryBaseDelayMS = 500

	DefaultMaxTokens = 4096

	DefaultMaxFileBytes   = 1 << 20
	DefaultMaxInputLength = 8000

	DefaultInspectorAddr = "127.0.0.1:8765"
)

// DefaultSystemPrompt introduces the agent to the model.
const DefaultSystemPrompt = `You are VOO, a helpful assistant running in the user's terminal.
You can inspect the local filesystem with the tools you are given:
list_files shows the entries of a directory (directories end with "/") and
read_file returns the contents of a text file. Use them when the question is
about local files, and answer concisely.`

var DefaultSensitiveKeys = []string{
	"password", "secret", "token", "api_key", "apikey",
	"access_key", "private_key", "credential", "authorization",
}
