package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamous/SDA/internal/pcode"
)

func writeImage(t *testing.T, img jsonImage) string {
	t.Helper()
	data, err := json.Marshal(img)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "image.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadImageParsesAndBuildsOneFunction(t *testing.T) {
	raw := `{
		"funcEntries": [4096],
		"instructions": [
			{"byteOffset": 4096, "orderId": 0, "op": "COPY",
			 "output": {"kind": "register", "register": {"id": 0, "size": 8}},
			 "input0": {"kind": "constant", "constant": {"value": 5, "size": 8}}},
			{"byteOffset": 4100, "orderId": 0, "op": "RETURN",
			 "input0": {"kind": "register", "register": {"id": 0, "size": 8}}}
		]
	}`
	path := filepath.Join(t.TempDir(), "image.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	img, instrs, err := loadImage(path)
	require.NoError(t, err)
	require.Len(t, instrs, 2)
	assert.Equal(t, pcode.OpCopy, instrs[0].Op)
	assert.Equal(t, pcode.OpReturn, instrs[1].Op)

	require.Len(t, img.FunctionGraphs(), 1)
	require.Len(t, img.HeadFuncGraphs(), 1)
	fg := img.HeadFuncGraphs()[0]
	require.NotNil(t, fg.StartBlock())
	assert.Equal(t, uint64(0x1000), fg.StartBlock().MinOffset())
}

func TestLoadImageRejectsUnknownOpcode(t *testing.T) {
	path := writeImage(t, jsonImage{
		Instructions: []jsonInstruction{{ByteOffset: 0x1000, Op: "NOT_A_REAL_OP"}},
	})

	_, _, err := loadImage(path)
	assert.ErrorContains(t, err, "unknown opcode")
}

func TestLoadImageRejectsMissingFile(t *testing.T) {
	_, _, err := loadImage(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}

func TestMustFuncEntryOffsetParsesHexAndDecimal(t *testing.T) {
	off, err := mustFuncEntryOffset("0x401000")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x401000), off)

	off, err = mustFuncEntryOffset("4198400")
	require.NoError(t, err)
	assert.Equal(t, uint64(4198400), off)
}

func TestMustFuncEntryOffsetRejectsGarbage(t *testing.T) {
	_, err := mustFuncEntryOffset("not-an-offset")
	assert.Error(t, err)
}
