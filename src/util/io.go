// io.go reads Alan source code and writes the emitted module.

package util

import (
	"bufio"
	"io"
	"os"
)

// ReadSource reads source code from file or stdin.
// If the Options structure holds a source path the file is opened and read.
// Else the whole of standard input is consumed.
func ReadSource(opt Options) (string, error) {
	if len(opt.Src) > 0 {
		b, err := os.ReadFile(opt.Src)
		return string(b), err
	}
	b, err := io.ReadAll(bufio.NewReader(os.Stdin))
	return string(b), err
}

// WriteOutput writes the emitted module to the output file of the Options
// structure, or to stdout when no output file is configured.
func WriteOutput(opt Options, s string) error {
	if len(opt.Out) == 0 {
		_, err := os.Stdout.WriteString(s)
		return err
	}
	f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	return w.Flush()
}
