package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                  "/",
		"/metrics":                          "/metrics",
		"/print/jobs":                       "/print/jobs",
		"/print/jobs/01ABC":                 "/print/jobs/:id",
		"/print/jobs/01ABC/status":          "/print/jobs/:id/status",
		"/print/jobs?status=pending&page=2": "/print/jobs",
		"/print/submit/client/01XYZ":        "/print/submit/client/:clientId",
		"/otp/check-verification/a@b.io":    "/otp/check-verification/:email",
		"/dashboard/weekly":                 "/dashboard/weekly",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
