package acquire_test

import (
	"testing"

	"github.com/benfiola/depot-helper/pkg/acquire"
)

func TestNormalizeAppID(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		invalid bool
	}{
		{raw: "123", want: "123"},
		{raw: "123-456", want: "123"},
		{raw: " 730 ", want: "730"},
		{raw: "dlc-123", want: "123"},
		{raw: "abc", invalid: true},
		{raw: "-", invalid: true},
		{raw: "", invalid: true},
	}
	for _, tc := range cases {
		got, err := acquire.NormalizeAppID(tc.raw)
		if tc.invalid {
			if err == nil {
				t.Fatalf("expected %q to be rejected, got %q", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("normalize %q failed: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("normalize %q: expected %q got %q", tc.raw, tc.want, got)
		}
	}
}
