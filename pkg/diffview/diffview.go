// Package diffview consumes a version-pair comparison result and renders
// it as added/removed/modified/unchanged section groups with line-level
// change markers.
package diffview

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"

	"prdpilot/pkg/types"
	"prdpilot/pkg/versions"
)

// maxVisibleChanges caps how many line changes are printed per modified
// section. Display-only: the stored counts are never affected.
const maxVisibleChanges = 20

type comparer interface {
	CompareVersions(ctx context.Context, projectID string, v1, v2 int) (*types.VersionDiff, error)
	GetVersionContent(ctx context.Context, projectID string, version int) (*types.VersionContent, error)
}

// View requests and renders comparisons for one project.
type View struct {
	client    comparer
	projectID string
}

// NewView creates a diff view bound to a project.
func NewView(client comparer, projectID string) *View {
	return &View{client: client, projectID: projectID}
}

// Compare validates the pair locally and requests the comparison. Equal
// versions are rejected before any network call.
func (v *View) Compare(ctx context.Context, v1, v2 int) (*types.VersionDiff, error) {
	if v1 == v2 {
		return nil, versions.ErrSameVersion
	}
	return v.client.CompareVersions(ctx, v.projectID, v1, v2)
}

var (
	addMarker     = color.New(color.FgGreen).SprintFunc()
	removeMarker  = color.New(color.FgRed).SprintFunc()
	contextMarker = color.New(color.Faint).SprintFunc()
	sectionTitle  = color.New(color.Bold).SprintFunc()
)

// Render formats a comparison for the terminal. Each modified section's
// changes keep document order; past maxVisibleChanges a "+N more" line
// stands in for the rest.
func Render(d *types.VersionDiff) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Comparing v%d -> v%d\n", d.Version1, d.Version2)
	if d.Summary != "" {
		fmt.Fprintf(&b, "%s\n", d.Summary)
	}
	fmt.Fprintf(&b, "%d added, %d removed, %d modified, %d unchanged\n",
		d.SectionsAdded, d.SectionsRemoved, d.SectionsModified, d.SectionsUnchanged)

	if len(d.Added) > 0 {
		fmt.Fprintf(&b, "\nAdded sections:\n")
		for _, s := range d.Added {
			fmt.Fprintf(&b, "  %s\n", sectionTitle(s.Title))
			for _, line := range strings.Split(strings.TrimRight(s.Content, "\n"), "\n") {
				fmt.Fprintf(&b, "    %s\n", addMarker("+ "+line))
			}
		}
	}

	if len(d.Removed) > 0 {
		fmt.Fprintf(&b, "\nRemoved sections:\n")
		for _, s := range d.Removed {
			fmt.Fprintf(&b, "  %s\n", removeMarker("- "+s.Title))
		}
	}

	if len(d.Modified) > 0 {
		fmt.Fprintf(&b, "\nModified sections:\n")
		for _, s := range d.Modified {
			fmt.Fprintf(&b, "  %s (%s similar)\n", sectionTitle(s.Title), FormatSimilarity(s.Similarity))
			visible := s.Changes
			hidden := 0
			if len(visible) > maxVisibleChanges {
				hidden = len(visible) - maxVisibleChanges
				visible = visible[:maxVisibleChanges]
			}
			for _, c := range visible {
				b.WriteString("    " + renderChange(c) + "\n")
			}
			if hidden > 0 {
				fmt.Fprintf(&b, "    %s\n", contextMarker(fmt.Sprintf("+%d more", hidden)))
			}
		}
	}

	if d.GapsComparison != nil {
		g := d.GapsComparison
		fmt.Fprintf(&b, "\nGaps: %d new, %d resolved, %d unchanged\n",
			len(g.NewGaps), len(g.ResolvedGaps), len(g.CommonGaps))
	}

	return b.String()
}

func renderChange(c types.LineChange) string {
	switch c.Type {
	case types.ChangeAdded:
		return addMarker("+ " + c.Content)
	case types.ChangeRemoved:
		return removeMarker("- " + c.Content)
	default:
		return contextMarker("  " + c.Content)
	}
}

// FormatSimilarity renders a [0,1] similarity as a rounded percentage.
// No other numeric transformation is applied.
func FormatSimilarity(similarity float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(similarity*100)))
}
