package tablesync

import "testing"

func TestTableName(t *testing.T) {
	cases := map[DataType]string{
		DataTypeEmployees: "dashboard_employeesTable",
		DataTypeAnalytics: "dashboard_analyticsTable",
		DataTypeStats:     "dashboard_statsTable",
		DataTypeSessions:  "dashboard_sessionsTable",
		DataType("foo"):   "dashboard_fooTable",
	}
	for dataType, want := range cases {
		if got := TableName(dataType); got != want {
			t.Fatalf("TableName(%q) = %q, want %q", dataType, got, want)
		}
	}
}

func TestTableRowID(t *testing.T) {
	cases := []struct {
		value any
		id    string
		ok    bool
	}{
		{nil, "", false},
		{"", "", false},
		{"abc", "abc", true},
		{float64(12), "12", true},
		{0, "", false},
		{int64(7), "7", true},
		{false, "", false},
	}
	for _, tc := range cases {
		id, ok := TableRow{"id": tc.value}.ID()
		if id != tc.id || ok != tc.ok {
			t.Fatalf("ID(%#v) = (%q, %v), want (%q, %v)", tc.value, id, ok, tc.id, tc.ok)
		}
	}
}

func TestTableSyncConfigValidate(t *testing.T) {
	err := TableSyncConfig{BotID: "bot"}.Validate()
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	verr := err.(*ValidationError)
	if len(verr.Fields) != 2 || verr.Fields[0] != "token" || verr.Fields[1] != "workspace_id" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}
	if err := (TableSyncConfig{Token: "t", WorkspaceID: "w"}).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if (TableSyncConfig{Token: "t", WorkspaceID: "w"}).Complete() {
		t.Fatalf("config without bot id should not be complete")
	}
	cfg := TableSyncConfig{Token: " t ", WorkspaceID: "w", BaseURL: "https://example.test/"}.WithDefaults()
	if cfg.Token != "t" || cfg.BaseURL != "https://example.test" {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}
	if (TableSyncConfig{}).WithDefaults().BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base url")
	}
}
