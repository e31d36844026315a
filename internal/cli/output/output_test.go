package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var sample = Table{
	Headers: []string{"SKU", "Name", "Price"},
	Rows: [][]string{
		{"CAT-0001", "Mug, large", "$12.50"},
		{"CAT-0002", `Tea "Earl" | Grey`, "$4.00"},
	},
	Records: []map[string]any{
		{"sku": "CAT-0001", "price": 12.5},
		{"sku": "CAT-0002", "price": 4.0},
	},
}

func TestOutputMode(t *testing.T) {
	tests := map[string]Mode{
		"":         ModeAuto,
		"auto":     ModeAuto,
		"text":     ModeText,
		"table":    ModeText,
		"md":       ModeMarkdown,
		"Markdown": ModeMarkdown,
		"json":     ModeJSON,
		"csv":      ModeCSV,
		"yaml":     ModeAuto,
	}
	for in, want := range tests {
		assert.Equal(t, want, OutputMode(in), in)
	}
}

func TestEffectiveMode(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, ModeText, NewRendererWithTTY(&out, &errOut, ModeAuto, true).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&out, &errOut, ModeAuto, false).EffectiveMode())
	assert.Equal(t, ModeJSON, NewRendererWithTTY(&out, &errOut, ModeJSON, true).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRenderer(&out, &errOut, "").EffectiveMode(), "buffers are not terminals")
}

func TestRenderTable(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeCSV, "SKU,Name,Price\nCAT-0001,\"Mug, large\",$12.50\nCAT-0002,\"Tea \"\"Earl\"\" | Grey\",$4.00\n"},
		{ModeMarkdown, "| SKU | Name | Price |\n| --- | --- | --- |\n| CAT-0001 | Mug, large | $12.50 |\n| CAT-0002 | Tea \"Earl\" \\| Grey | $4.00 |\n"},
		{ModeJSON, "[\n  {\n    \"price\": 12.5,\n    \"sku\": \"CAT-0001\"\n  },\n  {\n    \"price\": 4,\n    \"sku\": \"CAT-0002\"\n  }\n]\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderTable(&buf, sample, tt.mode))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderTable_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, sample, ModeText))
	out := buf.String()
	assert.Contains(t, out, "SKU")
	assert.Contains(t, out, "Mug, large")
	assert.Contains(t, out, "(2 rows)")

	buf.Reset()
	require.NoError(t, RenderTable(&buf, Table{Headers: []string{"SKU"}}, ModeText))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderTable(&buf, Table{}, ModeJSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRendererMessages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, ModeText, false)
	r.Success("seeded")
	r.Error("failed")
	r.Warning("careful")
	r.Println(FormatKeyValue("Products", "120"))

	assert.Equal(t, "✓ seeded\nProducts:          120\n", out.String())
	assert.Equal(t, "✗ failed\n! careful\n", errOut.String())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "## Orders", FormatHeader(2, "Orders"))
	assert.Equal(t, "# Orders", FormatHeader(0, "Orders"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}

func TestSpinner(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, ModeText, false)
	s := r.NewSpinner("loading")
	s.Start()
	s.Success("done")
	s.Stop()
	assert.Contains(t, errOut.String(), "✓ done")

	// Stopping a spinner that never started does not block.
	r.NewSpinner("idle").Fail("nope")
	assert.Contains(t, errOut.String(), "✗ nope")
}
