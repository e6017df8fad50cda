package entities

// LogCommand is the host command that receives guest log records.
const LogCommand = "plugin:log|log"

// LogLevel is the host log plugin's severity scale.
type LogLevel int

// Host log levels.
const (
	LogTrace LogLevel = iota + 1
	LogDebug
	LogInfo
	LogWarn
	LogError
)

// LogRecord is the argument of LogCommand.
type LogRecord struct {
	KeyValues map[string]string `json:"keyValues,omitempty"`
	Message   string            `json:"message"`
	Location  string            `json:"location,omitempty"`
	File      string            `json:"file,omitempty"`
	Line      int               `json:"line,omitempty"`
	Level     LogLevel          `json:"level" validate:"gte=1,lte=5"`
}
