package repl

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// readInput returns the next trimmed line. Ctrl-C on a partly typed line
// discards it; on an empty line it ends the session like Ctrl-D.
func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) && strings.TrimSpace(line) != "" {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseCommand splits "/cmd rest" into a lower-cased command and its
// trimmed arguments. Input without a leading slash is not a command.
func (r *REPL) parseCommand(input string) (bool, string, string) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	command, args, _ := strings.Cut(input, " ")
	return true, strings.ToLower(command), strings.TrimSpace(args)
}

func setupReadline() (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:              "> ",
		InterruptPrompt:     "^C",
		EOFPrompt:           "/quit",
		HistorySearchFold:   true,
		FuncFilterInputRune: blockSuspend,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("/login", readline.PcItem("user1"), readline.PcItem("user2")),
			readline.PcItem("/logout"),
			readline.PcItem("/whoami"),
			readline.PcItem("/add"),
			readline.PcItem("/list", readline.PcItem("--upcoming")),
			readline.PcItem("/show"),
			readline.PcItem("/dismiss"),
			readline.PcItem("/check"),
			readline.PcItem("/help"),
			readline.PcItem("/quit"),
		),
	})
}

// blockSuspend keeps Ctrl-Z from stopping the shell and its scheduler.
func blockSuspend(r rune) (rune, bool) {
	return r, r != readline.CharCtrlZ
}

// sessionEnded reports whether a read error means the user closed the shell.
func sessionEnded(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}
