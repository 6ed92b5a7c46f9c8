package highlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `#include <stdio.h>

int ping_main(int argc, char **argv) {
    return 0;
}
`

func TestWrite_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte(source), false))
	assert.Equal(t, source, buf.String())
}

func TestWrite_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte(source), true))

	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "ping_main")
	assert.NotEqual(t, source, out)
}

func TestWrite_ColorKeepsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte(source), true))

	// Stripping escape sequences yields the input text
	plain := stripANSI(buf.String())
	assert.Equal(t, strings.TrimRight(source, "\n"), strings.TrimRight(plain, "\n"))
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
