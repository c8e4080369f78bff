package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestTurnJSONShape(t *testing.T) {
	turn := Turn{Role: RoleUser, Parts: []Part{
		{Text: "look"},
		{InlineData: &Blob{MIMEType: "image/png", Data: []byte("png")}},
	}}

	data, err := json.Marshal(turn)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"role":"user","parts":[{"text":"look"},{"inline_data":{"mime_type":"image/png","data":"cG5n"}}]}`,
		string(data))
}

func TestGenaiConversionKeepsOrderAndImages(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Parts: []Part{{Text: "hi"}, {InlineData: &Blob{MIMEType: "image/jpeg", Data: []byte{9}}}}},
		{Role: RoleModel, Parts: []Part{{Text: "hello"}}},
	}

	contents := toGenaiContents(turns)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, "image/jpeg", contents[0].Parts[1].InlineData.MIMEType)

	assert.Equal(t, turns, fromGenaiContents(contents))
}

func TestFromGenaiContentsSkipsEmptyParts(t *testing.T) {
	contents := []*genai.Content{
		nil,
		{Role: "model", Parts: []*genai.Part{nil, {Text: ""}, {Text: "ok"}}},
	}

	assert.Equal(t, []Turn{{Role: RoleModel, Parts: []Part{{Text: "ok"}}}}, fromGenaiContents(contents))
}

func TestGenerateConfigUsesPermissiveSafety(t *testing.T) {
	cfg := generateConfig("persona")

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "persona", cfg.SystemInstruction.Parts[0].Text)
	require.Len(t, cfg.SafetySettings, 4)
	for _, s := range cfg.SafetySettings {
		assert.Equal(t, genai.HarmBlockThresholdBlockNone, s.Threshold)
	}

	assert.Nil(t, generateConfig("").SystemInstruction)
}
