package doclink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tsawler/doclink/model"
)

// ToJSON serializes a linked document with stable field names. Every
// reference carries an explicit not_matched boolean, false included, so
// downstream consumers never have to distinguish "absent" from "false".
func ToJSON(doc *model.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	return data, nil
}

// WriteJSON serializes a linked document to a writer.
func WriteJSON(doc *model.Document, w io.Writer) error {
	data, err := ToJSON(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// FromJSON parses a serialized document produced by ToJSON.
func FromJSON(data []byte) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &doc, nil
}

// ParseInput parses a DocumentInput from JSON, the shape produced by
// upstream OCR and layout-detection collaborators.
func ParseInput(data []byte) (DocumentInput, error) {
	var input DocumentInput
	if err := json.Unmarshal(data, &input); err != nil {
		return DocumentInput{}, fmt.Errorf("parsing input: %w", err)
	}
	return input, nil
}
