package ui

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdpilot/pkg/types"
)

func init() {
	color.NoColor = true
}

func TestPriorityBadge(t *testing.T) {
	assert.Equal(t, "[CRITICAL]", PriorityBadge(types.PriorityCritical))
	assert.Equal(t, "[IMPORTANT]", PriorityBadge(types.PriorityImportant))
	assert.Equal(t, "[OPTIONAL]", PriorityBadge(types.PriorityOptional))
}

func TestStageMark(t *testing.T) {
	assert.Equal(t, "✔", StageMark(true))
	assert.Equal(t, "·", StageMark(false))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "User Roles And Permissions", TitleCase("user roles and permissions"))
}

func TestReadLineTrims(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  hello world  \n"))
	line, err := ReadLine(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)
}

func TestReadLineEOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(""))
	_, err := ReadLine(r)
	assert.Equal(t, io.EOF, err)
}

func TestAskForConfirmation(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{name: "explicit yes", input: "yes\n", want: true},
		{name: "short no", input: "n\n", defaultYes: true, want: false},
		{name: "empty uses default yes", input: "\n", defaultYes: true, want: true},
		{name: "empty uses default no", input: "\n", want: false},
		{name: "garbage then yes", input: "maybe\ny\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			assert.Equal(t, tt.want, AskForConfirmation(r, "Proceed?", tt.defaultYes))
		})
	}
}
