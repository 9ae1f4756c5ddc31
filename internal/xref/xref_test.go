package xref

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/oppath"
)

func TestScan(t *testing.T) {
	ctx := context.Background()
	owner := oppath.MustParse("/project/consumer")

	t.Run("both syntaxes parse identically", func(t *testing.T) {
		mustache := Scan(ctx, "size is {{/project/source.par.size}}", owner)
		call := Scan(ctx, "size is op('/project/source').par.size", owner)

		require.Len(t, mustache, 1)
		require.Len(t, call, 1)
		assert.Equal(t, mustache[0], call[0])
		assert.Equal(t, "/project/source", mustache[0].Operator.String())
		assert.Equal(t, Inputs, mustache[0].Namespace)
		assert.Equal(t, "size", mustache[0].Field())
	})

	t.Run("relative paths resolve against the owner's container", func(t *testing.T) {
		refs := Scan(ctx, "{{source.out.val}} and {{../sibling.out.val}}", owner)
		require.Len(t, refs, 2)
		assert.Equal(t, "/project/source", refs[0].Operator.String())
		assert.Equal(t, "/sibling", refs[1].Operator.String())
		assert.Equal(t, Outputs, refs[0].Namespace)
	})

	t.Run("deep field paths keep their segments", func(t *testing.T) {
		refs := Scan(ctx, "op('/a').out.result.features.name", owner)
		require.Len(t, refs, 1)
		assert.Equal(t, []string{"result", "features", "name"}, refs[0].FieldPath)
		assert.Equal(t, "result", refs[0].Field())
		assert.Equal(t, "xref:/a:out:result", refs[0].ConnectionID())
	})

	t.Run("same target dedupes to one ref", func(t *testing.T) {
		refs := Scan(ctx, "{{/a.out.v}} + op('/a').out.v + {{/a.out.v.deep}}", owner)
		assert.Len(t, refs, 1, "field-level identity, deeper segments do not split the edge")
	})

	t.Run("malformed paths are skipped", func(t *testing.T) {
		refs := Scan(ctx, "{{bad path!.par.x}} then {{/ok.par.x}}", owner)
		require.Len(t, refs, 1)
		assert.Equal(t, "/ok", refs[0].Operator.String())
	})

	t.Run("plain text yields nothing", func(t *testing.T) {
		assert.Empty(t, Scan(ctx, "no references here, just par and out words", owner))
	})
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	owner := oppath.MustParse("/project/consumer")

	idsOf := func(refs []Ref) map[string]bool {
		out := make(map[string]bool, len(refs))
		for _, r := range refs {
			out[r.ConnectionID()] = true
		}
		return out
	}

	t.Run("growing from one to two references adds exactly one edge", func(t *testing.T) {
		before := Scan(ctx, "{{/a.out.v}}", owner)
		after := Scan(ctx, "{{/a.out.v}} + {{/b.out.v}}", owner)

		adds, removes := Diff(idsOf(before), after)
		require.Len(t, adds, 1)
		assert.Equal(t, "/b", adds[0].Operator.String())
		assert.Empty(t, removes)
	})

	t.Run("shrinking back removes exactly that edge", func(t *testing.T) {
		before := Scan(ctx, "{{/a.out.v}} + {{/b.out.v}}", owner)
		after := Scan(ctx, "{{/a.out.v}}", owner)

		adds, removes := Diff(idsOf(before), after)
		assert.Empty(t, adds)
		assert.Equal(t, []string{"xref:/b:out:v"}, removes)
	})

	t.Run("unchanged text is a no-op", func(t *testing.T) {
		refs := Scan(ctx, "{{/a.out.v}} * 2", owner)
		adds, removes := Diff(idsOf(refs), refs)
		assert.Empty(t, adds)
		assert.Empty(t, removes)
	})

	t.Run("cleared text removes everything", func(t *testing.T) {
		refs := Scan(ctx, "{{/a.out.v}} + {{/b.par.w}}", owner)
		adds, removes := Diff(idsOf(refs), nil)
		assert.Empty(t, adds)
		assert.Equal(t, []string{"xref:/a:out:v", "xref:/b:par:w"}, removes)
	})
}
