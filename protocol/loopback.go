package protocol

import (
	"strings"

	"macrokey/core"
)

// Loopback stands in for the host desktop. It watches text typed through a
// Recorder and, whenever a complete host command goes by, writes the next
// scripted answer into the serial stream the way printf on the host would.
// With no answers left it behaves like `read -t` timing out: an empty line.
type Loopback struct {
	Recorder *core.Recorder
	Stream   *FifoStream

	// Prefix is written before every answer, e.g. stray escape sequences
	Prefix string

	answers []string
	prompts []string
}

// NewLoopback wires a Recorder and a FifoStream together
func NewLoopback(answers ...string) *Loopback {
	l := &Loopback{
		Recorder: core.NewRecorder(),
		Stream:   NewFifoStream(512),
		answers:  answers,
	}
	l.Recorder.OnText = l.onText
	return l
}

// Answer queues more scripted answers
func (l *Loopback) Answer(answers ...string) {
	l.answers = append(l.answers, answers...)
}

// Prompts returns every prompt the host was asked to show
func (l *Loopback) Prompts() []string {
	return l.prompts
}

func (l *Loopback) onText(s string) {
	if !strings.HasPrefix(s, "bash -c '") || !strings.Contains(s, "read -t ") {
		return
	}
	l.prompts = append(l.prompts, promptOf(s))

	answer := ""
	if len(l.answers) > 0 {
		answer = l.answers[0]
		l.answers = l.answers[1:]
	}
	l.Stream.Write([]byte(l.Prefix + answer + "\n"))
}

// promptOf extracts the echoed prompt from a host command
func promptOf(cmd string) string {
	const open = "echo \""
	i := strings.Index(cmd, open)
	if i < 0 {
		return ""
	}
	rest := cmd[i+len(open):]
	j := strings.Index(rest, "\"; read -t ")
	if j < 0 {
		return ""
	}
	return rest[:j]
}
