package ai

// Roles used in a transcript
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message of a transcript. The JSON shape is what the state file stores.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a piece of a turn, either text or inline binary data
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inline_data,omitempty"`
}

// Blob is inline binary content; Data is base64 encoded by encoding/json
type Blob struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Image is an attachment sent alongside user text
type Image struct {
	MIMEType string
	Data     []byte
}

// Text joins the text parts of a turn
func (t Turn) Text() string {
	var text string
	for _, p := range t.Parts {
		text += p.Text
	}
	return text
}

// userTurn builds the turn recorded for an outgoing message
func userTurn(text string, images []Image) Turn {
	turn := Turn{Role: RoleUser}
	if text != "" {
		turn.Parts = append(turn.Parts, Part{Text: text})
	}
	for _, img := range images {
		turn.Parts = append(turn.Parts, Part{InlineData: &Blob{MIMEType: img.MIMEType, Data: img.Data}})
	}
	return turn
}

// cloneTurns copies a transcript so callers cannot alias a chat's internal slice
func cloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = Turn{Role: t.Role, Parts: append([]Part(nil), t.Parts...)}
	}
	return out
}
