package phpwalk_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/phpwalk/phpwalk/phpwalktest"
)

// TestConformance drives every fixture named in testdata/suite.yaml
// through a fresh interpreter and holds the run against the manifest.
func TestConformance(t *testing.T) {
	suite, err := phpwalktest.LoadSuite(filepath.Join("testdata", "suite.yaml"))
	if err != nil {
		t.Fatalf("loading suite: %v", err)
	}
	for _, tc := range suite.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			r := &phpwalktest.Runner{}
			res := r.RunFile(filepath.Join("testdata", tc.File))

			if tc.Error != "" {
				if res.Err == nil {
					t.Fatalf("run succeeded, want an error containing %q", tc.Error)
				}
				if !strings.Contains(res.Err.Error(), tc.Error) {
					t.Fatalf("error = %q, want it to contain %q", res.Err, tc.Error)
				}
				return
			}
			if res.Err != nil {
				t.Fatalf("run failed: %v", res.Err)
			}

			if res.Output != tc.Output {
				t.Errorf("output = %q, want %q", res.Output, tc.Output)
			}
			if diff := cmp.Diff(tc.Diags, res.DiagStrings(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
			for name, want := range tc.Bindings {
				v, ok := res.Global(name)
				if !ok {
					t.Errorf("variable %q is not bound", name)
					continue
				}
				if got := v.Inspect(); got != want {
					t.Errorf("%s = %s, want %s", name, got, want)
				}
			}
		})
	}
}
