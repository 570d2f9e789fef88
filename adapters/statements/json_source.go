package statements

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal"
	"opinionmap/internal/errors"
	"opinionmap/ports"

	"github.com/tidwall/gjson"
)

// Key aliases accepted for each field, first match wins
var (
	tidKeys  = []string{"tid", "statement_id"}
	modKeys  = []string{"mod", "moderated"}
	textKeys = []string{"txt", "text"}
)

// JSONSource loads statements from a statements.json export
type JSONSource struct {
	path   string
	logger *internal.Logger
}

// NewJSONSource creates a statement source reading path on every load
func NewJSONSource(path string) ports.StatementSource {
	return &JSONSource{
		path:   path,
		logger: internal.DefaultLogger.WithPrefix("Statements"),
	}
}

// LoadStatements reads and normalizes the file
func (s *JSONSource) LoadStatements(ctx context.Context) ([]opinion.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.StatementSourceError(s.path, err)
	}

	statements, skipped, err := Parse(body)
	if err != nil {
		return nil, errors.StatementSourceError(s.path, err)
	}
	if skipped > 0 {
		s.logger.Warn("%s: skipped %d entries without a numeric statement id", s.path, skipped)
	}
	s.logger.Debug("%s: loaded %d statements", s.path, len(statements))
	return statements, nil
}

// Parse normalizes a JSON array of statement objects. Entries without a usable
// statement id are skipped and counted.
func Parse(body []byte) ([]opinion.Statement, int, error) {
	if !gjson.ValidBytes(body) {
		return nil, 0, fmt.Errorf("invalid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, 0, fmt.Errorf("expected a JSON array of statements")
	}

	var out []opinion.Statement
	skipped := 0
	root.ForEach(func(_, entry gjson.Result) bool {
		st, ok := normalize(entry)
		if !ok {
			skipped++
			return true
		}
		out = append(out, st)
		return true
	})
	return out, skipped, nil
}

func normalize(entry gjson.Result) (opinion.Statement, bool) {
	if !entry.IsObject() {
		return opinion.Statement{}, false
	}

	tidField, ok := first(entry, tidKeys)
	if !ok {
		return opinion.Statement{}, false
	}
	tid, err := core.ParseStatementID(tidField.String())
	if err != nil {
		return opinion.Statement{}, false
	}

	st := opinion.Statement{
		TID:        tid,
		Moderation: opinion.ModerationUnknown,
	}

	if mod, ok := first(entry, modKeys); ok {
		st.Moderation = moderation(mod)
	}
	if txt, ok := first(entry, textKeys); ok {
		st.Text = txt.String()
	}
	if st.Text == "" {
		st.Text = opinion.MissingText
	}

	// keep any other keys
	known := make(map[string]bool)
	for _, keys := range [][]string{tidKeys, modKeys, textKeys} {
		for _, k := range keys {
			known[k] = true
		}
	}
	entry.ForEach(func(key, value gjson.Result) bool {
		if known[key.String()] {
			return true
		}
		if st.Meta == nil {
			st.Meta = make(map[string]any)
		}
		st.Meta[key.String()] = value.Value()
		return true
	})

	return st, true
}

// first returns the first present, non-null field of keys
func first(entry gjson.Result, keys []string) (gjson.Result, bool) {
	for _, k := range keys {
		if v := entry.Get(k); v.Exists() && v.Type != gjson.Null {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// moderation reads the flag as a number or numeric string
func moderation(v gjson.Result) opinion.ModerationState {
	switch v.Type {
	case gjson.Number:
		return opinion.ModerationFromRaw(int(v.Int()))
	case gjson.String:
		raw, err := strconv.Atoi(strings.TrimSpace(v.String()))
		if err != nil {
			return opinion.ModerationUnknown
		}
		return opinion.ModerationFromRaw(raw)
	default:
		return opinion.ModerationUnknown
	}
}
