package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldAutoJSON(t *testing.T) {
	assert.True(t, shouldAutoJSON([]string{"top", "--limit", "3"}, false))
	assert.False(t, shouldAutoJSON([]string{"top", "--limit", "3", "--json"}, false))
	assert.False(t, shouldAutoJSON([]string{"completion", "zsh"}, false))
	assert.False(t, shouldAutoJSON([]string{"serve", "--addr", ":9090"}, false))
	assert.False(t, shouldAutoJSON([]string{"--help"}, false))
	assert.False(t, shouldAutoJSON([]string{"top", "--limit", "3"}, true))
}

func TestFirstCommand_SkipsFlagValues(t *testing.T) {
	assert.Equal(t, "stores", firstCommand([]string{"--offers", "offers.json", "stores"}))
	assert.Equal(t, "tags", firstCommand([]string{"-t", "batch", "tags"}))
	assert.Equal(t, "", firstCommand([]string{"--limit", "5"}))
}

func TestPrintQuickStart_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := printQuickStart(&buf, true)
	require.NoError(t, err)

	var payload quickStartJSON
	err = json.Unmarshal(buf.Bytes(), &payload)
	require.NoError(t, err)

	assert.Equal(t, "dealchef", payload.Name)
	assert.NotEmpty(t, payload.Usage)
	assert.Len(t, payload.Examples, 3)
}

func TestPrintCLIErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	err := printCLIErrorJSON(&buf, classifyCLIError(invalidArgsError("bad flag", "dealchef top")))
	require.NoError(t, err)

	var payload map[string]any
	err = json.Unmarshal(buf.Bytes(), &payload)
	require.NoError(t, err)

	errorObject, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ARGS", errorObject["code"])
	assert.Equal(t, "bad flag", errorObject["message"])
	assert.EqualValues(t, ExitInvalidArgs, errorObject["exitCode"])
}

func TestClassifyCLIError(t *testing.T) {
	tests := []struct {
		err      error
		code     string
		exitCode int
	}{
		{errors.New(`accepts 1 arg(s), received 0`), "INVALID_ARGS", ExitInvalidArgs},
		{errors.New(`requires at least 1 arg(s), only received 0`), "INVALID_ARGS", ExitInvalidArgs},
		{errors.New("flag needs an argument: --limit"), "INVALID_ARGS", ExitInvalidArgs},
		{errors.New("recipe not found: chili"), "NOT_FOUND", ExitNotFound},
		{errors.New("unexpected status 503 from https://feed.example"), "UPSTREAM_ERROR", ExitUpstream},
		{upstreamError("fetching offers", errors.New("timeout")), "UPSTREAM_ERROR", ExitUpstream},
		{dataError("loading recipes", errors.New("bad yaml")), "DATA_ERROR", ExitInvalidArgs},
		{errors.New("something odd"), "INTERNAL_ERROR", ExitInternal},
	}
	for _, tt := range tests {
		got := classifyCLIError(tt.err)
		assert.Equal(t, tt.code, got.Code, tt.err.Error())
		assert.Equal(t, tt.exitCode, got.ExitCode, tt.err.Error())
	}
	assert.Nil(t, classifyCLIError(nil))
}
