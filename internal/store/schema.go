package store

import (
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/quizgen/ent/schema"
)

const (
	generationsTable = "generations"
	questionsTable   = "questions"
	llmEventsTable   = "llm_request_events"
)

// entType is what the store reads from an ent schema definition.
type entType interface {
	Mixin() []ent.Mixin
	Fields() []ent.Field
	Edges() []ent.Edge
	Indexes() []ent.Index
}

type tableSource struct {
	table string
	def   entType
}

// tables lists every table in creation order, migrated from the
// definitions in ent/schema.
var tables = mustBuildTables(
	tableSource{generationsTable, entschema.Generation{}},
	tableSource{questionsTable, entschema.Question{}},
	tableSource{llmEventsTable, entschema.LLMRequestEvent{}},
)

func mustBuildTables(srcs ...tableSource) []*schema.Table {
	ts, err := buildTables(srcs...)
	if err != nil {
		panic(fmt.Sprintf("store: ent schema: %v", err))
	}
	return ts
}

// buildTables turns ent definitions into migration tables. Every table
// gets an auto-increment "id"; inverse edges with a Field become foreign
// keys onto an earlier table.
func buildTables(srcs ...tableSource) ([]*schema.Table, error) {
	byType := make(map[string]*schema.Table, len(srcs))
	out := make([]*schema.Table, 0, len(srcs))

	for _, src := range srcs {
		typeName := reflect.TypeOf(src.def).Name()
		t := schema.NewTable(src.table)

		id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
		t.AddPrimary(id)

		var fields []ent.Field
		for _, m := range src.def.Mixin() {
			fields = append(fields, m.Fields()...)
		}
		fields = append(fields, src.def.Fields()...)
		for _, f := range fields {
			col, err := column(f)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", typeName, err)
			}
			t.AddColumn(col)
		}

		for _, e := range src.def.Edges() {
			d := e.Descriptor()
			if !d.Inverse || d.Field == "" {
				continue
			}
			ref, ok := byType[d.Type]
			if !ok {
				return nil, fmt.Errorf("%s: edge %q references %s before it is defined", typeName, d.Name, d.Type)
			}
			col, ok := t.Column(d.Field)
			if !ok {
				return nil, fmt.Errorf("%s: edge %q field %q is not a column", typeName, d.Name, d.Field)
			}
			t.AddForeignKey(&schema.ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_%s", src.table, ref.Name, d.RefName),
				Columns:    []*schema.Column{col},
				RefTable:   ref,
				RefColumns: []*schema.Column{ref.PrimaryKey[0]},
				OnDelete:   schema.Cascade,
			})
		}

		for _, ix := range src.def.Indexes() {
			d := ix.Descriptor()
			for _, name := range d.Fields {
				if _, ok := t.Column(name); !ok {
					return nil, fmt.Errorf("%s: index on unknown column %q", typeName, name)
				}
			}
			t.AddIndex(strings.ToLower(typeName)+"_"+strings.Join(d.Fields, "_"), d.Unique, d.Fields)
		}

		byType[typeName] = t
		out = append(out, t)
	}
	return out, nil
}

func column(f ent.Field) (*schema.Column, error) {
	d := f.Descriptor()
	if d.Err != nil {
		return nil, fmt.Errorf("field %q: %w", d.Name, d.Err)
	}
	c := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Nullable: d.Optional,
		Size:     int64(d.Size),
	}
	// Function defaults (time.Now) are filled in by the repos on insert.
	if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
		c.Default = d.Default
	}
	return c, nil
}
