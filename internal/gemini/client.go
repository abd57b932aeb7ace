package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"chat-backend/pkg/api"
)

// Client wraps the genai SDK for the two upstream operations this backend
// relays: content generation and file upload.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Generate sends the full conversation in one stateless call and returns the
// reply text.
func (c *Client) Generate(ctx context.Context, contents []api.Turn) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, toContents(contents), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return resp.Text(), nil
}

// Upload forwards a staged file to Gemini's file storage and returns the
// reference clients embed in later chat turns.
func (c *Client) Upload(ctx context.Context, path, mimeType, displayName string) (api.FileReference, error) {
	file, err := c.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return api.FileReference{}, fmt.Errorf("gemini upload file: %w", err)
	}

	return api.FileReference{
		URI:         file.URI,
		MimeType:    file.MIMEType,
		DisplayName: file.DisplayName,
	}, nil
}

func toContents(turns []api.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			if p.FileData != nil {
				parts = append(parts, genai.NewPartFromURI(p.FileData.FileURI, p.FileData.MimeType))
			} else {
				parts = append(parts, genai.NewPartFromText(p.Text))
			}
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.Role(turn.Role)))
	}
	return contents
}
