package plan

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan documents are markdown files with a YAML header block between `---`
// fences, followed by free-form sections. The header carries every machine
// field; `## Steps`, `## Context` and `## Result` are the sections the codec
// owns, and `## Notes` holds the plan's free-form body through end of file.

var (
	// ErrMissingHeader indicates the document did not start with a YAML fence.
	ErrMissingHeader = errors.New("plan: missing header block")
	// ErrMalformedHeader indicates the header block could not be parsed.
	ErrMalformedHeader = errors.New("plan: malformed header block")
)

const timeLayout = time.RFC3339

// header mirrors the YAML block at the top of a plan file. Unknown keys are
// tolerated on read for forward compatibility.
type header struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	Status           string   `yaml:"status"`
	Version          int      `yaml:"version"`
	Created          string   `yaml:"created"`
	Updated          string   `yaml:"updated"`
	Tools            []string `yaml:"tools,omitempty"`
	ExecutionStarted string   `yaml:"execution_started,omitempty"`
	ExecutionEnded   string   `yaml:"execution_ended,omitempty"`
	Scripts          []string `yaml:"scripts,omitempty"`
}

var stepLineRe = regexp.MustCompile(`^(\d+)\.\s(.*?)\s\{tool=(\S*) op=(\S*)(?: target=(.*?))?\}$`)

// Serialize renders a plan as a document: YAML header fences followed by the
// Steps, Context and Result sections and the free-form body.
func Serialize(p *Plan) ([]byte, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("plan: serialize: missing id")
	}
	if !p.Status.Known() {
		return nil, fmt.Errorf("plan: serialize: unknown status %q", p.Status)
	}
	if p.Version < 1 {
		return nil, fmt.Errorf("plan %s: serialize: version must be positive, got %d", p.ID, p.Version)
	}
	for i, step := range p.Steps {
		if strings.Contains(step.Description, "\n") {
			return nil, fmt.Errorf("plan %s: serialize: step %d description must be a single line", p.ID, i+1)
		}
		if strings.ContainsAny(step.Tool+step.Operation, " \n") {
			return nil, fmt.Errorf("plan %s: serialize: step %d tool/operation must not contain spaces", p.ID, i+1)
		}
		if strings.Contains(step.Target, "\n") {
			return nil, fmt.Errorf("plan %s: serialize: step %d target must be a single line", p.ID, i+1)
		}
	}
	for _, field := range []struct{ name, value string }{{"context", p.Context}, {"result summary", p.ResultSummary}} {
		if hasSectionHeading(field.value) {
			return nil, fmt.Errorf("plan %s: serialize: %s must not contain '## ' headings", p.ID, field.name)
		}
	}
	if hasOwnedHeading(p.Body) {
		return nil, fmt.Errorf("plan %s: serialize: body must not contain the Steps/Context/Result headings", p.ID)
	}

	h := header{
		ID:      p.ID,
		Title:   p.Title,
		Status:  string(p.Status),
		Version: p.Version,
		Created: p.CreatedAt.UTC().Format(timeLayout),
		Updated: p.UpdatedAt.UTC().Format(timeLayout),
		Tools:   p.ToolsRequired,
	}
	if !p.ExecutionStartedAt.IsZero() {
		h.ExecutionStarted = p.ExecutionStartedAt.UTC().Format(timeLayout)
	}
	if !p.ExecutionEndedAt.IsZero() {
		h.ExecutionEnded = p.ExecutionEndedAt.UTC().Format(timeLayout)
	}
	for _, s := range p.Scripts {
		h.Scripts = append(h.Scripts, string(s))
	}

	meta, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("plan %s: encode header: %w", p.ID, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(meta, "\n"))
	buf.WriteString("\n---\n\n## Steps\n")
	for i, step := range p.Steps {
		fmt.Fprintf(&buf, "%d. %s {tool=%s op=%s", i+1, step.Description, step.Tool, step.Operation)
		if step.Target != "" {
			fmt.Fprintf(&buf, " target=%s", step.Target)
		}
		buf.WriteString("}\n")
	}
	if p.Context != "" {
		buf.WriteString("\n## Context\n\n")
		buf.WriteString(p.Context)
		buf.WriteString("\n")
	}
	if p.ResultSummary != "" {
		buf.WriteString("\n## Result\n\n")
		buf.WriteString(p.ResultSummary)
		buf.WriteString("\n")
	}
	if p.Body != "" {
		buf.WriteString("\n## Notes\n\n")
		buf.WriteString(p.Body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Parse is the inverse of Serialize. Every field round-trips; free-form
// narrative fields are whitespace-trimmed on both sides of the trip.
func Parse(content []byte) (*Plan, error) {
	if len(content) == 0 {
		return nil, ErrMissingHeader
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, ErrMissingHeader
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return nil, ErrMalformedHeader
	}

	var h header
	if err := yaml.Unmarshal(parts[0], &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	p, err := h.toPlan()
	if err != nil {
		return nil, err
	}
	if err := parseSections(p, string(parts[1])); err != nil {
		return nil, err
	}
	return p, nil
}

func (h header) toPlan() (*Plan, error) {
	if h.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedHeader)
	}
	status := Status(h.Status)
	if !status.Known() {
		return nil, fmt.Errorf("plan %s: %w: unknown status %q", h.ID, ErrMalformedHeader, h.Status)
	}
	if h.Version < 1 {
		return nil, fmt.Errorf("plan %s: %w: version must be positive, got %d", h.ID, ErrMalformedHeader, h.Version)
	}
	p := &Plan{
		ID:            h.ID,
		Title:         h.Title,
		Status:        status,
		Version:       h.Version,
		ToolsRequired: h.Tools,
	}
	var err error
	if p.CreatedAt, err = parseTime(h.Created); err != nil {
		return nil, fmt.Errorf("plan %s: parse created: %w", h.ID, err)
	}
	if p.UpdatedAt, err = parseTime(h.Updated); err != nil {
		return nil, fmt.Errorf("plan %s: parse updated: %w", h.ID, err)
	}
	if h.ExecutionStarted != "" {
		if p.ExecutionStartedAt, err = parseTime(h.ExecutionStarted); err != nil {
			return nil, fmt.Errorf("plan %s: parse execution_started: %w", h.ID, err)
		}
	}
	if h.ExecutionEnded != "" {
		if p.ExecutionEndedAt, err = parseTime(h.ExecutionEnded); err != nil {
			return nil, fmt.Errorf("plan %s: parse execution_ended: %w", h.ID, err)
		}
	}
	for _, s := range h.Scripts {
		marker := StepStatus(s)
		switch marker {
		case StepPending, StepInProgress, StepDone, StepFailed:
			p.Scripts = append(p.Scripts, marker)
		default:
			return nil, fmt.Errorf("plan %s: %w: unknown step marker %q", h.ID, ErrMalformedHeader, s)
		}
	}
	return p, nil
}

func parseSections(p *Plan, text string) error {
	lines := strings.Split(text, "\n")
	i := 0
	var seenSteps, seenContext, seenResult bool
	for i < len(lines) {
		line := lines[i]
		switch {
		case line == "## Steps" && !seenSteps:
			seenSteps = true
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "## ") {
				stepLine := lines[i]
				i++
				if strings.TrimSpace(stepLine) == "" {
					continue
				}
				m := stepLineRe.FindStringSubmatch(stepLine)
				if m == nil {
					return fmt.Errorf("plan %s: malformed step line: %q", p.ID, stepLine)
				}
				p.Steps = append(p.Steps, Step{
					Description: m[2],
					Tool:        m[3],
					Operation:   m[4],
					Target:      m[5],
				})
			}
		case line == "## Context" && !seenContext:
			seenContext = true
			i++
			start := i
			for i < len(lines) && !strings.HasPrefix(lines[i], "## ") {
				i++
			}
			p.Context = strings.TrimSpace(strings.Join(lines[start:i], "\n"))
		case line == "## Result" && !seenResult:
			seenResult = true
			i++
			start := i
			for i < len(lines) && !strings.HasPrefix(lines[i], "## ") {
				i++
			}
			p.ResultSummary = strings.TrimSpace(strings.Join(lines[start:i], "\n"))
		case line == "## Notes":
			// The free-form body runs to the end of the document; it may
			// carry its own headings (e.g. rejection feedback).
			p.Body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			i = len(lines)
		case strings.TrimSpace(line) == "":
			i++
		default:
			// Unrecognized content is tolerated as free-form body so
			// hand-edited documents still parse.
			p.Body = strings.TrimSpace(strings.Join(lines[i:], "\n"))
			i = len(lines)
		}
	}
	return nil
}

func hasSectionHeading(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "## ") {
			return true
		}
	}
	return false
}

// hasOwnedHeading reports whether any line of s is a heading the codec
// itself emits. The body may carry other headings (e.g. "## Feedback").
func hasOwnedHeading(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		switch line {
		case "## Steps", "## Context", "## Result", "## Notes":
			return true
		}
	}
	return false
}

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
