package iocli

//go:generate moq -out io_mock.go . IO

// IO is how the client talks to the user: prompts, alerts and the status indicator
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
