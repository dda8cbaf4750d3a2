package screen

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/davarch/ci-dashboard/internal/domain"
)

var (
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	blue   = lipgloss.Color("75")
	purple = lipgloss.Color("99")
	dim    = lipgloss.Color("243")
)

var bucketColors = map[string]lipgloss.Color{
	domain.BucketSuccess: green,
	domain.BucketFail:    red,
	domain.BucketRunning: blue,
	domain.BucketManual:  purple,
	domain.BucketSkipped: dim,
	domain.JobSuccess:    green,
	domain.JobFail:       red,
	domain.JobRunning:    blue,
	domain.JobManual:     purple,
	domain.JobSkipped:    dim,
}

var glyphs = map[string]string{
	domain.IconCheck:   "✔",
	domain.IconTimes:   "✖",
	domain.IconStop:    "■",
	domain.IconPlay:    "▶",
	domain.IconSpinner: "⚙",
	domain.IconMinus:   "–",
	domain.IconClock:   "⏱",
}

type RenderOptions struct {
	// Width of the drawing area; 0 leaves lines unwrapped.
	Width int
	// Spinner replaces the static glyph of running jobs when set.
	Spinner string
	// Hyperlinks emits OSC 8 links for job names.
	Hyperlinks bool
}

// Render draws the visible part of the tree. Projects still carrying the
// hidden bucket are skipped.
func Render(nodes []domain.NodeView, opt RenderOptions) string {
	var b strings.Builder
	for _, p := range nodes {
		kind, bucket := splitClass(p.Class)
		if kind != domain.KindProject || bucket == domain.BucketHidden {
			continue
		}
		b.WriteString(renderProject(p, bucket, opt))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderProject(p domain.NodeView, bucket string, opt RenderOptions) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorOf(bucket)).
		Render("▌ " + p.Content.Text)

	lines := []string{header}
	for _, c := range p.Children {
		if kind, _ := splitClass(c.Class); kind == domain.KindPipeline {
			lines = append(lines, renderPipeline(c, opt))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPipeline(pl domain.NodeView, opt RenderOptions) string {
	_, bucket := splitClass(pl.Class)
	style := lipgloss.NewStyle().Foreground(colorOf(bucket))

	var label, clock string
	var jobs []string
	for _, c := range pl.Children {
		kind, jb := splitClass(c.Class)
		switch kind {
		case domain.KindLabel:
			label = c.Content.Text
		case domain.KindTime:
			if c.Content.Text != "" {
				clock = glyph(c.Content.Icon, opt) + " " + c.Content.Text
			}
		case domain.KindJob:
			jobs = append(jobs, renderJob(c.Content, jb, opt))
		}
	}
	if label == "" {
		// detail not fetched yet
		label = "…"
	}

	head := "  " + style.Render(label)
	if clock != "" {
		head += "  " + lipgloss.NewStyle().Foreground(dim).Render(clock)
	}
	if len(jobs) == 0 {
		return head
	}

	body := lipgloss.NewStyle().PaddingLeft(4)
	if opt.Width > 4 {
		body = body.Width(opt.Width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, body.Render(strings.Join(jobs, "  ")))
}

func renderJob(f domain.Fragment, bucket string, opt RenderOptions) string {
	style := lipgloss.NewStyle().Foreground(colorOf(bucket))
	text := f.Text
	if opt.Width > 0 {
		text = ansi.Truncate(text, opt.Width/2, "…")
	}
	if opt.Hyperlinks && f.Link != "" {
		text = ansi.SetHyperlink(f.Link) + text + ansi.ResetHyperlink()
	}
	return style.Render(glyph(f.Icon, opt)) + " " + text
}

func glyph(icon string, opt RenderOptions) string {
	if icon == domain.IconSpinner && opt.Spinner != "" {
		return opt.Spinner
	}
	if g, ok := glyphs[icon]; ok {
		return g
	}
	return icon
}

func colorOf(bucket string) lipgloss.Color {
	if c, ok := bucketColors[bucket]; ok {
		return c
	}
	return dim
}

func splitClass(class string) (kind, bucket string) {
	f := strings.Fields(class)
	switch len(f) {
	case 0:
		return "", ""
	case 1:
		return f[0], ""
	default:
		return f[0], f[1]
	}
}
