package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"chat-backend/pkg/api"
)

func TestToContents(t *testing.T) {
	turns := []api.Turn{
		{Role: api.RoleUser, Parts: []api.Part{
			{Text: "what is in this file?"},
			{FileData: &api.FileData{FileURI: "files/abc", MimeType: "application/pdf"}},
		}},
		{Role: api.RoleModel, Parts: []api.Part{{Text: "a quarterly report"}}},
	}

	contents := toContents(turns)
	require.Len(t, contents, 2)

	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, "what is in this file?", contents[0].Parts[0].Text)
	require.NotNil(t, contents[0].Parts[1].FileData)
	assert.Equal(t, "files/abc", contents[0].Parts[1].FileData.FileURI)
	assert.Equal(t, "application/pdf", contents[0].Parts[1].FileData.MIMEType)

	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	require.Len(t, contents[1].Parts, 1)
	assert.Equal(t, "a quarterly report", contents[1].Parts[0].Text)
}

func TestToContentsEmpty(t *testing.T) {
	assert.Empty(t, toContents(nil))
}
