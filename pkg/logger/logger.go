// Package logger provides prefixed stdlib loggers for libraries that expect
// a Printf-style writer, such as the gorm logger.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// New returns a stdout logger with component prefix.
func New(component string) *log.Logger {
	return NewWriter(os.Stdout, component)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, component string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)
}
