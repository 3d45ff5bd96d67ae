// Package protocol decodes the action envelope players submit:
// {"type": string, "payload": object | null}.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"colonos/internal/app"
)

// Envelope is the wire form of a player action.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// payloadSchema names the schema of each action type that takes a payload.
var payloadSchema = map[app.ActionType]string{
	app.ActionBankTrade:       schemaBankTrade,
	app.ActionBuildRoad:       schemaRoad,
	app.ActionBuildSettlement: schemaVertex,
	app.ActionUpgradeCity:     schemaVertex,
	app.ActionPlayKnight:      schemaRobber,
	app.ActionMoveRobber:      schemaRobber,
}

// DecodeEnvelope validates the envelope of raw and defers the type and payload
// checks to the game, which runs them after the turn checks.
func DecodeEnvelope(raw []byte) (app.Action, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return app.Action{}, app.Validation("Malformed request body.", err)
	}
	if err := schemas[schemaEnvelope].Validate(doc); err != nil {
		return app.Action{}, app.Validation(detail("Invalid request", err), err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return app.Action{}, app.Validation("Malformed request body.", err)
	}
	return app.Action{
		Type:   app.ActionType(env.Type),
		Binder: payloadBinder{payload: string(env.Payload)},
	}, nil
}

// DecodeAction validates raw and returns the typed action. Unknown types fail
// with app.ErrInvalidAction, malformed envelopes and payloads with a validation error.
func DecodeAction(raw []byte) (app.Action, error) {
	a, err := DecodeEnvelope(raw)
	if err != nil {
		return app.Action{}, err
	}
	if !a.Type.Known() {
		return app.Action{}, app.ErrInvalidAction
	}
	if err := a.Binder.Bind(&a); err != nil {
		return app.Action{}, err
	}
	return a, nil
}

// payloadBinder holds the raw payload of an envelope as a string, keeping
// app.Action comparable.
type payloadBinder struct {
	payload string
}

func (b payloadBinder) Bind(a *app.Action) error {
	a.Binder = nil
	return bindPayload(a, []byte(b.payload))
}

func bindPayload(a *app.Action, raw []byte) error {
	name, ok := payloadSchema[a.Type]
	if !ok {
		return nil
	}
	if len(raw) == 0 || string(raw) == "null" {
		return app.Validation(fmt.Sprintf("%s requires a payload", a.Type), nil)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return app.Validation("Malformed payload.", err)
	}
	if err := schemas[name].Validate(payload); err != nil {
		return app.Validation(detail("Invalid payload", err), err)
	}

	var target any
	switch a.Type {
	case app.ActionBankTrade:
		target = &a.Trade
	case app.ActionBuildRoad:
		target = &a.Road
	case app.ActionBuildSettlement, app.ActionUpgradeCity:
		target = &a.Vertex
	case app.ActionPlayKnight, app.ActionMoveRobber:
		target = &a.Robber
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return app.Validation("Malformed payload.", err)
	}
	return nil
}

// EncodeAction is the inverse of DecodeAction, used by clients and tests.
func EncodeAction(a app.Action) ([]byte, error) {
	env := struct {
		Type    app.ActionType `json:"type"`
		Payload any            `json:"payload"`
	}{Type: a.Type}
	switch a.Type {
	case app.ActionBankTrade:
		env.Payload = a.Trade
	case app.ActionBuildRoad:
		env.Payload = a.Road
	case app.ActionBuildSettlement, app.ActionUpgradeCity:
		env.Payload = a.Vertex
	case app.ActionPlayKnight, app.ActionMoveRobber:
		env.Payload = a.Robber
	}
	return json.Marshal(env)
}

// detail reports the first failing leaf of a schema validation error.
func detail(prefix string, err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return prefix + "."
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s %s", prefix, loc, ve.Message)
}
