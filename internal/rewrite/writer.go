package rewrite

import (
	"fmt"
	"io"
	"os"
)

// Writer routes rewritten files the way gofmt does: -w writes in place,
// -l lists changed files, the default prints to stdout.
type Writer struct {
	Write bool
	List  bool
	Out   io.Writer
}

func NewWriter(write, list bool) *Writer {
	return &Writer{Write: write, List: list, Out: os.Stdout}
}

func (w *Writer) Output(filename, relPath, src string, changed bool) error {
	if !changed {
		return nil
	}
	if w.List {
		_, err := fmt.Fprintln(w.Out, relPath)
		return err
	}
	if w.Write {
		info, err := os.Stat(filename)
		perm := os.FileMode(0o644)
		if err == nil {
			perm = info.Mode().Perm()
		}
		return os.WriteFile(filename, []byte(src), perm)
	}
	_, err := io.WriteString(w.Out, src)
	return err
}
