package rest

import "testing"

func TestSplitLink(t *testing.T) {
	tests := []struct {
		path     string
		wantType string
		wantLink string
	}{
		{"/dbs", "dbs", ""},
		{"/dbs/tour", "dbs", "dbs/tour"},
		{"/dbs/tour/colls", "colls", "dbs/tour"},
		{"/dbs/tour/colls/c", "colls", "dbs/tour/colls/c"},
		{"/dbs/tour/colls/c/docs", "docs", "dbs/tour/colls/c"},
		{"/dbs/tour/colls/c/docs/42", "docs", "dbs/tour/colls/c/docs/42"},
		{"/", "", ""},
	}
	for _, tt := range tests {
		gotType, gotLink := SplitLink(tt.path)
		if gotType != tt.wantType || gotLink != tt.wantLink {
			t.Errorf("SplitLink(%q) = (%q, %q), want (%q, %q)",
				tt.path, gotType, gotLink, tt.wantType, tt.wantLink)
		}
	}
}
