package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks yes/no questions.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter returns a prompter reading answers from in and writing
// questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm prints question and reads one line. Only "y" and "yes" accept;
// end of input declines.
func (p *Prompter) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", question); err != nil {
		return false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ConfirmOverwrite asks whether the listed files may be replaced.
func (p *Prompter) ConfirmOverwrite(paths []string) (bool, error) {
	if len(paths) == 0 {
		return true, nil
	}
	var b strings.Builder
	b.WriteString("The following output files already exist:\n")
	for _, path := range paths {
		fmt.Fprintf(&b, "  %s\n", path)
	}
	b.WriteString("Overwrite?")
	return p.Confirm(b.String())
}
