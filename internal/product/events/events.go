// Package events holds the catalog change events.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/google/uuid"
)

const (
	// SubjectPrefix is shared by every catalog subject; streams capture SubjectPrefix + ">".
	SubjectPrefix = "catalog.products."

	ProductAddedSubject   = SubjectPrefix + "added"
	ProductUpdatedSubject = SubjectPrefix + "updated"
	ProductDeletedSubject = SubjectPrefix + "deleted"
)

type ProductAddedEvent struct {
	EventID    uuid.UUID     `json:"event_id"`
	Source     string        `json:"source"`
	Product    model.Product `json:"product"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (e ProductAddedEvent) Subject() string {
	return ProductAddedSubject
}

func (e ProductAddedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductUpdatedEvent struct {
	EventID    uuid.UUID     `json:"event_id"`
	Product    model.Product `json:"product"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (e ProductUpdatedEvent) Subject() string {
	return ProductUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Reference  string    `json:"referencia"`
	Removed    int       `json:"removed"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductDeletedEvent) Subject() string {
	return ProductDeletedSubject
}

func (e ProductDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
