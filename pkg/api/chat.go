package api

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one content item within a turn: either inline text or a reference
// to a previously uploaded file. Exactly one of the two fields is set.
type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

type FileData struct {
	FileURI  string `json:"fileUri"`
	MimeType string `json:"mimeType"`
}

// Turn is a single message in a conversation, tagged by role ("user" or
// "model"). Part order is significant within a turn.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// FileReference is the handle returned by the upload endpoint. Clients embed
// it in a subsequent chat request to attach the file to that turn.
type FileReference struct {
	URI         string `json:"uri"`
	MimeType    string `json:"mimeType"`
	DisplayName string `json:"displayName"`
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type HistoryRequest struct {
	SessionID string `schema:"sessionId"`
}

type HistoryResponse struct {
	History []Turn `json:"history"`
}

type ResetRequest struct {
	SessionID string `json:"sessionId"`
}

type ResetResponse struct {
	Ok bool `json:"ok"`
}

type UploadResponse struct {
	Files []FileReference `json:"files"`
}

type ChatRequest struct {
	SessionID string          `json:"sessionId"`
	Text      string          `json:"text,omitempty"`
	Files     []FileReference `json:"files,omitempty"`
}

type ChatResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
