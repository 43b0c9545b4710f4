package threshold

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator for one line of input.
//
// Prompt returns the line without its terminator. At end of input it returns
// io.EOF.
type Prompter interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

// LinePrompter prompts on a writer and reads answers line by line.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and writing prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

type lineResult struct {
	line string
	err  error
}

// Prompt writes prompt and waits for a line. A cancelled context stops the
// wait; the pending read is abandoned.
func (p *LinePrompter) Prompt(ctx context.Context, prompt string) (string, error) {
	if _, err := io.WriteString(p.out, prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	ch := make(chan lineResult, 1)
	// A cancelled prompt leaves this read blocked on input. The process
	// exits right after a cancel, so the goroutine is not reclaimed.
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && (!errors.Is(res.err, io.EOF) || res.line == "") {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

// ScriptedPrompter answers prompts from a fixed list of lines.
type ScriptedPrompter struct {
	// Lines are returned in order; io.EOF follows the last one.
	Lines []string

	// Prompts records every prompt shown.
	Prompts []string

	// Out, when set, receives each prompt followed by the answer, the way
	// it would appear on a terminal.
	Out io.Writer
}

// NewScriptedPrompter creates a prompter that replays lines.
func NewScriptedPrompter(lines ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Lines: lines}
}

// Prompt implements Prompter.
func (p *ScriptedPrompter) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.Prompts = append(p.Prompts, prompt)
	if len(p.Lines) == 0 {
		if p.Out != nil {
			fmt.Fprintln(p.Out, prompt)
		}
		return "", io.EOF
	}
	line := p.Lines[0]
	p.Lines = p.Lines[1:]
	if p.Out != nil {
		fmt.Fprintf(p.Out, "%s%s\n", prompt, line)
	}
	return line, nil
}
