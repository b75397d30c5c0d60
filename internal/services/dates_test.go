package services

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"24/11/2004", "2004-11-24"},
		{"2004-11-24T03:00:00.000Z", "2004-11-24"},
		{"2004-11-24", "2004-11-24"},
		{" 01/02/1990 ", "1990-02-01"},
	}
	for _, tc := range cases {
		got := NormalizeDate(tc.in)
		if got == nil || *got != tc.want {
			t.Errorf("NormalizeDate(%q) = %v, want %q", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "yesterday", "31/02/2004", "2004-13-01"} {
		if got := NormalizeDate(bad); got != nil {
			t.Errorf("NormalizeDate(%q) = %q, want nil", bad, *got)
		}
	}
}

func TestMiddayTimestamp(t *testing.T) {
	if got := middayTimestamp(ptr("2004-11-24")); got == nil || *got != "2004-11-24T12:00:00" {
		t.Errorf("middayTimestamp() = %v", got)
	}
	if got := middayTimestamp(nil); got != nil {
		t.Errorf("middayTimestamp(nil) = %q, want nil", *got)
	}
}
