package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bofhshell/internal/testutils"
	"bofhshell/pkg/bofhtypes"
)

func newTestRenderer(svc *testutils.FakeService) (*Renderer, *testutils.OutputBuffer) {
	printer, buffer := testutils.NewTestPrinter()
	return New(svc, printer), buffer
}

func TestRender_ScalarNeverFetchesFormat(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	r, buffer := newTestRenderer(svc)

	err := r.Render(context.Background(), "user_create", bofhtypes.ScalarReply("Created user olanor"))

	require.NoError(t, err)
	assert.Equal(t, "Created user olanor\n", buffer.String())
	assert.Zero(t, svc.CallCount("get_format_suggestion"))
	assert.False(t, r.Cached("user_create"))
}

func TestRender_NoReplyPrintsNothing(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	r, buffer := newTestRenderer(svc)

	require.NoError(t, r.Render(context.Background(), "user_delete", bofhtypes.NoReply()))
	assert.Empty(t, buffer.String())
	assert.Zero(t, svc.CallCount("get_format_suggestion"))
}

func TestRender_SkipsRecordsMissingFields(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["misc_list"] = bofhtypes.FormatSpec{
		Lines: []bofhtypes.FormatLine{{Template: "%s:%s", Fields: []string{"a", "b"}}},
	}
	r, buffer := newTestRenderer(svc)

	reply := bofhtypes.RowsReply([]map[string]string{
		{"a": "1", "b": "x"},
		{"a": "2"},
	}, true)
	require.NoError(t, r.Render(context.Background(), "misc_list", reply))

	assert.Equal(t, []string{"1:x"}, buffer.Lines())
}

func TestRender_LinesInDeclaredOrder(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["user_info"] = bofhtypes.FormatSpec{
		Header:    "Account info",
		HasHeader: true,
		Lines: []bofhtypes.FormatLine{
			{Template: "Username:      %s", Fields: []string{"username"}},
			{Template: "Spread:        %s", Fields: []string{"spread"}},
			{Template: "Quarantined:   %s", Fields: []string{"quarantined"}},
		},
	}
	r, buffer := newTestRenderer(svc)

	reply := bofhtypes.RowsReply([]map[string]string{
		{"username": "olanor", "quarantined": "<not set>"},
		{"spread": "NIS_user@uio"},
		{"spread": "AD_account"},
	}, false)
	require.NoError(t, r.Render(context.Background(), "user_info", reply))

	// A single mapping reply never prints the header.
	assert.Equal(t, []string{
		"Username:      olanor",
		"Spread:        NIS_user@uio",
		"Spread:        AD_account",
		"Quarantined:   <not set>",
	}, buffer.Lines())
}

func TestRender_HeaderOnlyForSequences(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["group_list"] = bofhtypes.FormatSpec{
		Header:    "Type   Name",
		HasHeader: true,
		Lines:     []bofhtypes.FormatLine{{Template: "%-6s %s", Fields: []string{"type", "name"}}},
	}
	r, buffer := newTestRenderer(svc)
	ctx := context.Background()

	rows := []map[string]string{{"type": "user", "name": "olanor"}}
	require.NoError(t, r.Render(ctx, "group_list", bofhtypes.RowsReply(rows, true)))
	require.NoError(t, r.Render(ctx, "group_list", bofhtypes.RowsReply(rows, false)))

	assert.Equal(t, []string{
		"Type   Name",
		"user   olanor",
		"user   olanor",
	}, buffer.Lines())
}

func TestRender_LineHeader(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["group_info"] = bofhtypes.FormatSpec{
		Lines: []bofhtypes.FormatLine{
			{Template: "%s", Fields: []string{"member"}, Header: "Members:"},
		},
	}
	r, buffer := newTestRenderer(svc)

	reply := bofhtypes.RowsReply([]map[string]string{{"member": "olanor"}, {"member": "karinor"}}, true)
	require.NoError(t, r.Render(context.Background(), "group_info", reply))

	assert.Equal(t, []string{"Members:", "olanor", "karinor"}, buffer.Lines())
}

func TestRender_FetchesFormatOncePerID(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["group_list"] = bofhtypes.FormatSpec{
		Lines: []bofhtypes.FormatLine{{Template: "%s", Fields: []string{"name"}}},
	}
	r, _ := newTestRenderer(svc)
	ctx := context.Background()
	reply := bofhtypes.RowsReply([]map[string]string{{"name": "staff"}}, true)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Render(ctx, "group_list", reply))
	}
	assert.Equal(t, 1, svc.CallCount("get_format_suggestion"))
	assert.True(t, r.Cached("group_list"))

	r.Reset()
	assert.False(t, r.Cached("group_list"))
	require.NoError(t, r.Render(ctx, "group_list", reply))
	assert.Equal(t, 2, svc.CallCount("get_format_suggestion"))
}

func TestRender_MissingFormatSpec(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	r, buffer := newTestRenderer(svc)
	ctx := context.Background()
	reply := bofhtypes.RowsReply([]map[string]string{{"name": "staff"}}, true)

	err := r.Render(ctx, "group_list", reply)
	assert.ErrorIs(t, err, bofhtypes.ErrMissingFormatSpec)
	assert.Empty(t, buffer.String())

	// The absence is remembered as well.
	err = r.Render(ctx, "group_list", reply)
	assert.ErrorIs(t, err, bofhtypes.ErrMissingFormatSpec)
	assert.Equal(t, 1, svc.CallCount("get_format_suggestion"))
}

func TestRender_FetchErrorIsNotCached(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.SetFormatError(bofhtypes.NewServiceError("get_format_suggestion", nil, "Error: down"))
	r, _ := newTestRenderer(svc)

	err := r.Render(context.Background(), "group_list", bofhtypes.RowsReply(nil, true))

	var serviceErr *bofhtypes.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.False(t, r.Cached("group_list"))
}

func TestRender_FormattingErrorContinues(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["quota_show"] = bofhtypes.FormatSpec{
		Lines: []bofhtypes.FormatLine{{Template: "%-8s %5d", Fields: []string{"user", "used"}}},
	}
	r, buffer := newTestRenderer(svc)

	reply := bofhtypes.RowsReply([]map[string]string{
		{"user": "olanor", "used": "12"},
		{"user": "karinor", "used": "lots"},
		{"user": "pernor", "used": "7"},
	}, true)
	require.NoError(t, r.Render(context.Background(), "quota_show", reply))

	assert.Equal(t, []string{
		"olanor      12",
		FormattingNotice,
		"pernor       7",
	}, buffer.Lines())
}

func TestRender_DateFields(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["user_info"] = bofhtypes.FormatSpec{
		Lines: []bofhtypes.FormatLine{{Template: "Expire: %s", Fields: []string{"expire:date:dd.MM.yyyy"}}},
	}
	r, buffer := newTestRenderer(svc)

	reply := bofhtypes.RowsReply([]map[string]string{
		{"expire": "2026-03-01T00:00:00"},
		{"expire": "<not set>"},
		{"expire": "someday"},
	}, true)
	require.NoError(t, r.Render(context.Background(), "user_info", reply))

	assert.Equal(t, []string{
		"Expire: 01.03.2026",
		"Expire: <not set>",
		FormattingNotice,
	}, buffer.Lines())
}

func TestRender_DatePatternLiteralsStayLiteral(t *testing.T) {
	svc := testutils.NewFakeService(nil)
	svc.Formats["user_info"] = bofhtypes.FormatSpec{
		Lines: []bofhtypes.FormatLine{
			{Template: "Expire: %s", Fields: []string{"expire:date:dd.MM.yyyy 'kl' 15"}},
			{Template: "Created: %s", Fields: []string{"created:date:yyyy QQ"}},
		},
	}
	r, buffer := newTestRenderer(svc)

	reply := bofhtypes.RowsReply([]map[string]string{
		{"expire": "2026-03-01T09:30:00", "created": "2020-01-01"},
	}, true)
	require.NoError(t, r.Render(context.Background(), "user_info", reply))

	assert.Equal(t, []string{
		"Expire: 01.03.2026 kl 15",
		FormattingNotice,
	}, buffer.Lines())
}
