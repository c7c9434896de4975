package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nexiq/storefront-api/internal/domain"
)

// validID reports whether id can address a stored record. Ids that are not
// UUIDs can never match, so callers treat them as absent instead of sending
// them to Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func newID() string {
	return uuid.NewString()
}

func marshalDocument(doc domain.Document) ([]byte, error) {
	if doc == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func unmarshalDocument(raw []byte) (domain.Document, error) {
	doc := domain.Document{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
