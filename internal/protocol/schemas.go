package protocol

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	schemaEnvelope  = "envelope.schema.json"
	schemaBankTrade = "bank_trade.schema.json"
	schemaRoad      = "road.schema.json"
	schemaVertex    = "vertex.schema.json"
	schemaRobber    = "robber.schema.json"
)

const schemaBase = "https://colonos.dev/schemas/"

var schemas = mustCompile(schemaEnvelope, schemaBankTrade, schemaRoad, schemaVertex, schemaRobber)

func compile(names ...string) (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := c.AddResource(schemaBase+name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := c.Compile(schemaBase + name)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}

func mustCompile(names ...string) map[string]*jsonschema.Schema {
	out, err := compile(names...)
	if err != nil {
		panic(err)
	}
	return out
}
