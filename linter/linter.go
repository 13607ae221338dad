package linter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/tess"
)

// Lint checks every model among paths: it must parse, replay without
// topology errors, pass structural validation, and tessellate every face.
func Lint(paths ...string) error {
	fmt.Println("🔍 Linting models...")

	files, err := model.Expand(paths)
	if err != nil {
		return fmt.Errorf("collecting models: %w", err)
	}

	violationCount := 0
	for _, path := range files {
		issues := CheckFile(path)
		for _, msg := range issues {
			fmt.Println(msg)
			fmt.Println(strings.Repeat("-", 60))
		}
		violationCount += len(issues)
	}

	if violationCount > 0 {
		return fmt.Errorf("linter failed: found %d problems in %d models", violationCount, len(files))
	}

	fmt.Printf("✅ Linter Passed: %d models are valid.\n", len(files))
	return nil
}

// CheckFile returns one formatted message per problem found in the model at
// path.
func CheckFile(path string) []string {
	var issues []string
	report := func(line int, kind, reason string) {
		where := path
		if line > 0 {
			where = fmt.Sprintf("%s:%d", path, line)
		}
		issues = append(issues, fmt.Sprintf(
			"  [ERROR] File: %s\n"+
				"    Check: %s\n"+
				"    Reason: %s",
			where, kind, reason,
		))
	}

	l, err := model.Load(path)
	if err != nil {
		var pe *oplog.ParseError
		if errors.As(err, &pe) {
			report(pe.Line, "syntax", pe.Err.Error())
		} else {
			report(0, "load", err.Error())
		}
		return issues
	}

	s, err := oplog.Build(l)
	if err != nil {
		var ito *oplog.InvalidTopologyOperation
		if errors.As(err, &ito) {
			report(ito.Line, "topology", fmt.Sprintf("operator #%d (%s): %v", ito.Index, ito.Kind, ito.Err))
		} else {
			report(0, "topology", err.Error())
		}
		return issues
	}

	if err := s.Validate(); err != nil {
		for _, e := range unjoin(err) {
			report(0, "structure", e.Error())
		}
		return issues
	}

	for f := range s.Faces() {
		tris, err := tess.TriangulateFace(s, f)
		if err != nil {
			report(0, "tessellation", err.Error())
			continue
		}
		if len(tris) == 0 {
			report(0, "tessellation", fmt.Sprintf("face %d produces no triangles", f.Index()))
		}
	}

	return issues
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
