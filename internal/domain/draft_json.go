package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes content into the payload type selected by documentType.
func (d *WorkoutDraft) UnmarshalJSON(b []byte) error {
	type plain WorkoutDraft
	var aux struct {
		plain
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	out := WorkoutDraft(aux.plain)
	if !out.DocumentType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDocumentType, out.DocumentType)
	}
	out.Content = EmptyContent(out.DocumentType)
	if len(aux.Content) > 0 && !bytes.Equal(aux.Content, []byte("null")) {
		if err := json.Unmarshal(aux.Content, out.Content); err != nil {
			return fmt.Errorf("decode %s content: %w", out.DocumentType, err)
		}
	}
	*d = out
	return nil
}
