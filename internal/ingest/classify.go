// Package ingest turns raw JSON payloads from the transport into typed crm
// records. Classification is key-presence based; all optional-field defaults
// are filled here so nothing downstream ever re-checks the wire shape.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pandr/coldcallbot/internal/crm"
)

// The three failure kinds the transport dispatches on. A decode failure is
// distinct from a well-formed payload that matches no schema, and both are
// distinct from a profile upload missing its required name fields.
var (
	ErrBadPayload        = errors.New("malformed json payload")
	ErrUnknownSchema     = errors.New("payload matches no known schema")
	ErrMissingNameFields = errors.New("profile requires firstName and lastName")
)

// Kind tags what a payload classified as.
type Kind int

const (
	KindProfile Kind = iota + 1
	KindCallResult
)

func (k Kind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindCallResult:
		return "call-result"
	default:
		return "unknown"
	}
}

// Meta is the classifier-owned stamp: when the message arrived and who sent
// it. It is never read from the payload itself.
type Meta struct {
	ReceivedAt   time.Time
	ReceivedFrom string
}

// Result is a successful classification. Exactly one of Profile/CallResult
// is populated, according to Kind.
type Result struct {
	Kind       Kind
	Profile    crm.Profile
	CallResult crm.CallResult
}

// payload is the superset wire shape both schemas decode through. Values are
// plain (JSON null leaves the zero value); key presence is checked separately
// so that any present value, empty or null included, still counts.
type payload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
	State       string `json:"state"`

	Outcome    string        `json:"outcome"`
	ScriptName string        `json:"scriptName"`
	Duration   int           `json:"duration"`
	Stats      crm.Sentiment `json:"stats"`
}

// Classify decides whether data is a profile, a call result, or neither.
// The profile check runs first: a payload carrying both name keys and
// outcome/scriptName is a profile and its call-result content is dropped.
// That tie-break is deliberate and load-bearing, not an accident.
func Classify(data []byte, meta Meta) (Result, error) {
	keys, body, err := decode(data)
	if err != nil {
		return Result{}, err
	}

	_, hasFirst := keys["firstName"]
	_, hasLast := keys["lastName"]
	if hasFirst && hasLast {
		return Result{Kind: KindProfile, Profile: body.profile(meta)}, nil
	}

	_, hasOutcome := keys["outcome"]
	_, hasScript := keys["scriptName"]
	if hasOutcome && hasScript {
		return Result{Kind: KindCallResult, CallResult: body.callResult(meta)}, nil
	}

	return Result{}, ErrUnknownSchema
}

// DecodeProfile is the strict path for uploaded documents, which only ever
// carry profiles: a payload without both name keys is a validation failure
// here, not merely unrecognized.
func DecodeProfile(data []byte, meta Meta) (crm.Profile, error) {
	keys, body, err := decode(data)
	if err != nil {
		return crm.Profile{}, err
	}

	if _, ok := keys["firstName"]; !ok {
		return crm.Profile{}, ErrMissingNameFields
	}
	if _, ok := keys["lastName"]; !ok {
		return crm.Profile{}, ErrMissingNameFields
	}
	return body.profile(meta), nil
}

func decode(data []byte) (map[string]json.RawMessage, payload, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, payload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	var body payload
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, payload{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return keys, body, nil
}

func (p payload) profile(m Meta) crm.Profile {
	return crm.Profile{
		ID:           uuid.New().String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Company:      p.Company,
		Position:     p.Position,
		PhoneNumber:  p.PhoneNumber,
		City:         p.City,
		State:        p.State,
		ReceivedAt:   m.ReceivedAt,
		ReceivedFrom: m.ReceivedFrom,
	}
}

func (p payload) callResult(m Meta) crm.CallResult {
	d := p.Duration
	if d < 0 {
		d = 0
	}
	return crm.CallResult{
		Outcome:      p.Outcome,
		ScriptName:   p.ScriptName,
		Duration:     d,
		Stats:        p.Stats,
		ReceivedAt:   m.ReceivedAt,
		ReceivedFrom: m.ReceivedFrom,
	}
}
