package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Tables are declared here rather than as generated ent schemas. The store
// needs one key/value table and three append-only event tables; ent's
// dialect builder supplies per-dialect quoting.

// columnTypes holds the physical column types for one dialect.
type columnTypes struct {
	id, idAttr string
	key        string
	blob       string
	text       string
	integer    string
	boolean    string
}

func typesFor(d string) columnTypes {
	switch d {
	case dialect.Postgres:
		return columnTypes{
			id: "bigserial", idAttr: "PRIMARY KEY",
			key: "varchar(191)", blob: "bytea", text: "text",
			integer: "bigint", boolean: "boolean",
		}
	case dialect.MySQL:
		return columnTypes{
			id: "bigint", idAttr: "AUTO_INCREMENT PRIMARY KEY",
			key: "varchar(191)", blob: "longblob", text: "longtext",
			integer: "bigint", boolean: "boolean",
		}
	default:
		return columnTypes{
			id: "integer", idAttr: "PRIMARY KEY AUTOINCREMENT",
			key: "text", blob: "blob", text: "text",
			integer: "integer", boolean: "boolean",
		}
	}
}

type column struct {
	name, typ, attr string
}

type tableDef struct {
	name    string
	columns func(t columnTypes) []column
	pk      []string
}

const (
	tableBlobs       = "blobs"
	tableLLMRequests = "llm_request_events"
	tableSessions    = "session_events"
	tableRefills     = "refill_events"
)

var tables = []tableDef{
	{
		name: tableBlobs,
		columns: func(t columnTypes) []column {
			return []column{
				{"blob_key", t.key, "NOT NULL"},
				{"data", t.blob, "NOT NULL"},
				{"updated_ms", t.integer, "NOT NULL"},
			}
		},
		pk: []string{"blob_key"},
	},
	{
		name: tableLLMRequests,
		columns: func(t columnTypes) []column {
			return []column{
				{"id", t.id, t.idAttr},
				{"timestamp_ms", t.integer, "NOT NULL"},
				{"provider", t.text, "NOT NULL"},
				{"model", t.text, "NOT NULL"},
				{"purpose", t.text, "NOT NULL"},
				{"input_tokens", t.integer, "NOT NULL"},
				{"output_tokens", t.integer, "NOT NULL"},
				{"latency_ms", t.integer, "NOT NULL"},
				{"success", t.boolean, "NOT NULL"},
				{"error_message", t.text, ""},
				{"request_body", t.text, ""},
				{"response_body", t.text, ""},
			}
		},
	},
	{
		name: tableSessions,
		columns: func(t columnTypes) []column {
			return []column{
				{"id", t.id, t.idAttr},
				{"timestamp_ms", t.integer, "NOT NULL"},
				{"session_id", t.text, "NOT NULL"},
				{"kind", t.text, "NOT NULL"},
				{"served", t.integer, "NOT NULL"},
				{"success_count", t.integer, "NOT NULL"},
				{"fail_count", t.integer, "NOT NULL"},
				{"duration_ms", t.integer, "NOT NULL"},
				{"abandoned", t.boolean, "NOT NULL"},
			}
		},
	},
	{
		name: tableRefills,
		columns: func(t columnTypes) []column {
			return []column{
				{"id", t.id, t.idAttr},
				{"timestamp_ms", t.integer, "NOT NULL"},
				{"kind", t.text, "NOT NULL"},
				{"received", t.integer, "NOT NULL"},
				{"added", t.integer, "NOT NULL"},
				{"latency_ms", t.integer, "NOT NULL"},
				{"success", t.boolean, "NOT NULL"},
				{"error_message", t.text, ""},
			}
		},
	},
}

// migrate creates any missing tables.
func (s *Store) migrate(ctx context.Context) error {
	types := typesFor(s.dialect)
	d := entsql.Dialect(s.dialect)
	for _, t := range tables {
		cols := t.columns(types)
		query := d.String(func(b *entsql.Builder) {
			b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(t.name).WriteString(" (")
			for i, c := range cols {
				if i > 0 {
					b.Comma()
				}
				typ := c.typ
				if c.attr != "" {
					typ += " " + c.attr
				}
				b.Join(d.Column(c.name).Type(typ))
			}
			if len(t.pk) > 0 {
				b.Comma().WriteString("PRIMARY KEY (").IdentComma(t.pk...).WriteByte(')')
			}
			b.WriteByte(')')
		})
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}
