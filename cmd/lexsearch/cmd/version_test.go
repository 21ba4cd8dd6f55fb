package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/lexsearch/pkg/version"
)

func TestVersionCmd_DefaultOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.String()+"\n", buf.String())
}

func TestVersionCmd_ShortOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.Version, strings.TrimSpace(buf.String()))
}

func TestVersionCmd_JSONOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var report versionReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, version.GetInfo(), report.BuildInfo)
	assert.Equal(t, []string{".docx", ".md", ".pdf", ".txt"}, report.Formats)
	assert.Equal(t, []string{"json", "sqlite"}, report.Backends)
}

func TestVersionCmd_VerboseListsFormats(t *testing.T) {
	cmd := newVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--verbose"})

	require.NoError(t, cmd.Execute())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, version.String(), lines[0])
	assert.Equal(t, "  formats:  .docx, .md, .pdf, .txt", lines[1])
	assert.Equal(t, "  backends: json, sqlite", lines[2])
}

func TestVersionCmd_FlagsExclusive(t *testing.T) {
	cmd := newVersionCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--json", "--short"})

	assert.Error(t, cmd.Execute())
}
