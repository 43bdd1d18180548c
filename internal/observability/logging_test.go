package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFieldsAppearInLogOutput(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(old)

	ctx := WithFile(context.Background(), "label.xml")
	ctx = WithDocument(ctx, "b2a1f8e0-0000-0000-0000-000000000001")
	ctx = WithSection(ctx, "34073-7")

	Warn(ctx, "dangling media reference", slog.String("media_token", "MM1"))

	out := buf.String()
	assert.Contains(t, out, `"file":"label.xml"`)
	assert.Contains(t, out, `"document_guid":"b2a1f8e0-0000-0000-0000-000000000001"`)
	assert.Contains(t, out, `"section_code":"34073-7"`)
	assert.Contains(t, out, `"media_token":"MM1"`)
}

func TestFieldsAccumulateWithoutMutatingParent(t *testing.T) {
	base := WithFile(context.Background(), "a.xml")
	child := WithSection(base, "42229-5")

	assert.Equal(t, LogContext{FileName: "a.xml"}, extract(base))
	assert.Equal(t, LogContext{FileName: "a.xml", SectionCode: "42229-5"}, extract(child))
}
