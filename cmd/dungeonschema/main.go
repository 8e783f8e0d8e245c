// Command dungeonschema writes JSON schemas for the authored data files so
// editors can validate dungeon definitions and the entity catalogue.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/milk9111/dungeoncore/levels"
	"github.com/milk9111/dungeoncore/prefabs"
)

func main() {
	var outPath, kind string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema; stdout when empty")
	flag.StringVar(&kind, "kind", "dungeon", "schema to build: dungeon or catalog")
	flag.Parse()

	schema, err := buildSchema(kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if outPath == "" {
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema(kind string) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{}
	var schema *jsonschema.Schema
	switch kind {
	case "dungeon":
		schema = reflector.Reflect(new(levels.DungeonDef))
		schema.Title = "Dungeon definition"
		schema.Description = "Validates files under levels/dungeons"
	case "catalog":
		schema = reflector.Reflect(new(prefabs.CatalogSpec))
		schema.Title = "Entity catalogue"
		schema.Description = "Validates prefabs/" + prefabs.CatalogFile
	default:
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
	return schema, nil
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
