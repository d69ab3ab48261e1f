package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned when a decoded body lacks a required non-null field.
var ErrMissingField = errors.New("missing required field")

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// PagedResponse is the envelope every list endpoint of the DroidconKE API returns.
type PagedResponse[T any] struct {
	Data []T       `json:"data"`
	Meta *PageMeta `json:"meta"`
}

// UnmarshalJSON rejects bodies without a data array, such as error payloads
// served with a 2xx status.
func (p *PagedResponse[T]) UnmarshalJSON(b []byte) error {
	var wire struct {
		Data json.RawMessage `json:"data"`
		Meta *PageMeta       `json:"meta"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	if isAbsent(wire.Data) {
		return missingField("data")
	}

	var data []T
	if err := json.Unmarshal(wire.Data, &data); err != nil {
		return err
	}
	p.Data = data
	p.Meta = wire.Meta
	return nil
}

type PageMeta struct {
	Paginator *Paginator `json:"paginator,omitempty"`
}

type Paginator struct {
	Count           int    `json:"count"`
	PerPage         int    `json:"per_page"`
	CurrentPage     int    `json:"current_page"`
	NextPage        *int   `json:"next_page,omitempty"`
	HasMorePages    bool   `json:"has_more_pages"`
	NextPageURL     string `json:"next_page_url,omitempty"`
	PreviousPageURL string `json:"previous_page_url,omitempty"`
}

// Listing is a page of resources as served by this gateway.
type Listing[T any] struct {
	Data   []T       `json:"data"`
	Meta   *PageMeta `json:"meta,omitempty"`
	Cached bool      `json:"cached"`
}

func NewListing[T any](page PagedResponse[T]) *Listing[T] {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	return &Listing[T]{
		Data: data,
		Meta: page.Meta,
	}
}
