package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/session"
)

func TestParseStageAcceptsEveryNameAndDefaultsToFinal(t *testing.T) {
	cases := map[string]session.Stage{
		"decompiling": session.StageDecompiling,
		"processing":  session.StageProcessing,
		"symbolizing": session.StageSymbolizing,
		"final":       session.StageFinalProcessing,
		"":            session.StageFinalProcessing,
	}
	for name, want := range cases {
		got, err := parseStage(name)
		require.NoError(t, err, "stage %q", name)
		assert.Equal(t, want, got)
	}
}

func TestParseStageRejectsUnknownName(t *testing.T) {
	_, err := parseStage("not-a-stage")
	assert.ErrorContains(t, err, "unknown --stop-at")
}

func TestNewRootCmdWiresDecompileAndDumpSubcommands(t *testing.T) {
	root := newRootCmd()

	decompile, _, err := root.Find([]string{"decompile"})
	require.NoError(t, err)
	assert.Equal(t, "decompile <image-file> [entry-offset]", decompile.Use)

	dumpPcode, _, err := root.Find([]string{"dump", "pcode"})
	require.NoError(t, err)
	assert.Equal(t, "pcode <image-file>", dumpPcode.Use)
}
