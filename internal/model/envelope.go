package model

import "encoding/json"

// Envelope is the response wrapper every API endpoint returns. Data is left
// raw so each caller decodes only the shape it expects.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}
