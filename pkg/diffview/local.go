package diffview

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"prdpilot/pkg/versions"
)

// LocalCompare fetches both version bodies and computes a client-side
// line diff, for inspecting raw text drift without the backend's
// section-level analysis. The same pair validation applies.
func (v *View) LocalCompare(ctx context.Context, v1, v2 int) (string, error) {
	if v1 == v2 {
		return "", versions.ErrSameVersion
	}

	first, err := v.client.GetVersionContent(ctx, v.projectID, v1)
	if err != nil {
		return "", fmt.Errorf("failed to fetch version %d: %w", v1, err)
	}
	second, err := v.client.GetVersionContent(ctx, v.projectID, v2)
	if err != nil {
		return "", fmt.Errorf("failed to fetch version %d: %w", v2, err)
	}

	return renderLineDiff(first.Content, second.Content), nil
}

// renderLineDiff produces a +/- line diff via diffmatchpatch's line-mode
// conversion, which keeps the diff aligned on line boundaries.
func renderLineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)

	var b strings.Builder
	for _, d := range diffs {
		prefix, paint := "  ", contextMarker
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+ ", addMarker
		case diffmatchpatch.DiffDelete:
			prefix, paint = "- ", removeMarker
		}
		for _, line := range splitDiffLines(d.Text) {
			b.WriteString(paint(prefix+line) + "\n")
		}
	}
	return b.String()
}

func splitDiffLines(text string) []string {
	trimmed := strings.TrimSuffix(text, "\n")
	if trimmed == "" && text != "" {
		return []string{""}
	}
	return strings.Split(trimmed, "\n")
}

// NoColor disables ANSI output, for non-terminal writers and tests.
func NoColor(disable bool) {
	color.NoColor = disable
}
