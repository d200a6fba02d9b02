package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// applyQuery runs a jq expression over data. A single result is returned as is; several
// results are collected into a slice.
func applyQuery(data any, expression string) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return data, nil
	}
	// zsh escapes ! even inside single quotes.
	expression = strings.ReplaceAll(expression, `\!`, `!`)

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid query expression: %w", err)
	}

	iter := query.Run(data)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("query error: %w", err)
		}
		results = append(results, v)
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// normalize converts v into the plain maps, slices and float64s gojq operates on.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// writeJSON prints v as indented JSON after applying --query. A query yielding a
// string prints it raw, like jq -r.
func (a *app) writeJSON(v any) error {
	if a.opts.Query != "" {
		doc, err := normalize(v)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		if v, err = applyQuery(doc, a.opts.Query); err != nil {
			return err
		}
		if s, ok := v.(string); ok {
			_, err := fmt.Fprintln(a.out, s)
			return err
		}
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
