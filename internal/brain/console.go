package brain

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ConsoleTransport is the manual backend: it prints the rendered prompt so it
// can be pasted into any LLM tool, then reads the model's answer back from
// the terminal. Input ends at the first blank line.
type ConsoleTransport struct {
	In  io.Reader
	Out io.Writer
}

func NewConsoleTransport() *ConsoleTransport {
	return &ConsoleTransport{In: os.Stdin, Out: os.Stdout}
}

func (t *ConsoleTransport) SubmitQuery(_ context.Context, query string) (string, error) {
	fmt.Fprintln(t.Out, query)
	fmt.Fprintln(t.Out, "Paste the query above into your favorite LLM tool, then paste its output below (finish with a blank line):")

	scanner := bufio.NewScanner(t.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" && len(lines) > 0 {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	output := strings.TrimSpace(strings.Join(lines, "\n"))
	if output == "" {
		return "", fmt.Errorf("no output received from console")
	}
	return output, nil
}
