package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWriterPrefixesMessages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriter(&buf, "history").Printf("slow query %d ms", 250)

	assert.Contains(t, buf.String(), "[history] slow query 250 ms")
}
