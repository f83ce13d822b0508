// Package api defines the onboarding.v1 gRPC service: its messages, service
// description and client stub.
package api

import "time"

// Client is the wire form of a client record.
type Client struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ShareToken string    `json:"share_token"`
	ShareURL   string    `json:"share_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Form is the wire form of an onboarding form.
type Form struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ListClientsRequest struct{}

type ListClientsResponse struct {
	Clients []Client `json:"clients"`
}

type GetClientRequest struct {
	ID string `json:"id"`
}

type GetClientByShareTokenRequest struct {
	Token string `json:"token"`
}

type ClientResponse struct {
	Client Client `json:"client"`
}

type CreateClientRequest struct {
	Name string `json:"name"`
}

type DeleteClientRequest struct {
	ID string `json:"id"`
}

type GetFormDataRequest struct {
	ClientID string `json:"client_id"`
}

type GetFormDataResponse struct {
	Form Form `json:"form"`
}

type SaveFormDataRequest struct {
	ClientID string            `json:"client_id"`
	Data     map[string]string `json:"data"`
}

type ClearFormDataRequest struct {
	ClientID string `json:"client_id"`
}

type ExportFormDataRequest struct {
	ClientID string `json:"client_id"`
	// GeneratedAt is rendered in the "Generert" line; zero means server time.
	GeneratedAt time.Time `json:"generated_at"`
}

type ExportFormDataResponse struct {
	Text string `json:"text"`
}

type Empty struct{}
