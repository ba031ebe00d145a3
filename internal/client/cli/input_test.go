package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMultiline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"stops at empty line", "a\nb\n\nc\n", "a\nb"},
		{"eof without newline", "a\nb", "a\nb"},
		{"empty input", "", ""},
		{"crlf", "a\r\nb\r\n\r\n", "a\nb"},
		{"trims", "  a  \n\n", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetMultiline(bufio.NewReader(strings.NewReader(tt.input)), "", &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetMultiline_PrintsPrompt(t *testing.T) {
	var w bytes.Buffer
	_, err := GetMultiline(bufio.NewReader(strings.NewReader("\n")), "Enter note text:", &w)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.String(), "Enter note text:\n"))
}

func TestSplitAssignment(t *testing.T) {
	k, v, err := splitAssignment("a_1=new name")
	require.NoError(t, err)
	assert.Equal(t, "a_1", k)
	assert.Equal(t, "new name", v)

	k, v, err = splitAssignment("a_1=")
	require.NoError(t, err)
	assert.Equal(t, "a_1", k)
	assert.Equal(t, "", v)

	_, _, err = splitAssignment("a_1")
	assert.Error(t, err)
	_, _, err = splitAssignment("=x")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"a.PNG", "", "image/png"},
		{"clip.mp4", "", "video/mp4"},
		{"song.mp3", "", "audio/mpeg"},
		{"noext", "\x89PNG\r\n\x1a\n0000", "image/png"},
		{"noext", "hello world", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentType(tt.name, []byte(tt.data)))
		})
	}
}
