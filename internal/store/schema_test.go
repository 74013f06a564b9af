package store

import (
	"math"
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableByName(t *testing.T, name string) *schema.Table {
	t.Helper()
	for _, tb := range tables {
		if tb.Name == name {
			return tb
		}
	}
	t.Fatalf("no table %q", name)
	return nil
}

func columnNames(tb *schema.Table) []string {
	out := make([]string, len(tb.Columns))
	for i, c := range tb.Columns {
		out[i] = c.Name
	}
	return out
}

func TestTablesFromEntSchema(t *testing.T) {
	require.Len(t, tables, 3)

	gens := tableByName(t, generationsTable)
	assert.Equal(t, []string{"id", "created_at", "difficulty", "provider", "model", "question_count"}, columnNames(gens))
	assert.True(t, gens.PrimaryKey[0].Increment)

	qs := tableByName(t, questionsTable)
	assert.Equal(t, []string{"id", "created_at", "question", "options", "correct_answer", "explanation",
		"difficulty", "bloom_level", "category", "generation_id"}, columnNames(qs))

	col, ok := qs.Column("options")
	require.True(t, ok)
	assert.Equal(t, field.TypeJSON, col.Type)
	col, _ = qs.Column("question")
	assert.EqualValues(t, math.MaxInt32, col.Size, "text fields map to unbounded columns")
	col, _ = qs.Column("explanation")
	assert.Equal(t, "", col.Default)
	col, _ = qs.Column("created_at")
	assert.Nil(t, col.Default, "function defaults are not column defaults")

	require.Len(t, qs.ForeignKeys, 1)
	fk := qs.ForeignKeys[0]
	assert.Equal(t, "questions_generations_questions", fk.Symbol)
	assert.Same(t, gens, fk.RefTable)
	assert.Equal(t, "generation_id", fk.Columns[0].Name)

	require.Len(t, qs.Indexes, 1)
	assert.Equal(t, "question_created_at_id", qs.Indexes[0].Name)
	assert.Len(t, qs.Indexes[0].Columns, 2)

	events := tableByName(t, llmEventsTable)
	var idx []string
	for _, ix := range events.Indexes {
		idx = append(idx, ix.Name)
	}
	assert.ElementsMatch(t, []string{"llmrequestevent_purpose", "llmrequestevent_model"}, idx)
}

type orphan struct{ ent.Schema }

func (orphan) Fields() []ent.Field { return []ent.Field{field.Int("parent_id")} }
func (orphan) Edges() []ent.Edge {
	return []ent.Edge{edge.From("parent", parent.Type).Ref("children").Field("parent_id").Unique()}
}

type parent struct{ ent.Schema }

func TestBuildTables_RejectsForwardReference(t *testing.T) {
	_, err := buildTables(tableSource{"orphans", orphan{}}, tableSource{"parents", parent{}})
	assert.ErrorContains(t, err, "before it is defined")

	ts, err := buildTables(tableSource{"parents", parent{}}, tableSource{"orphans", orphan{}})
	require.NoError(t, err)
	assert.Len(t, ts[1].ForeignKeys, 1)
}
