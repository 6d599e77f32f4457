package wgconf

import "strings"

// Section is a bracketed block of a config. Start is the header line index,
// End is the index of the next header (or len(lines)).
type Section struct {
	Name  string
	Start int
	End   int
}

// Document is a config split on '\n' with the section spans located. Lines
// keep any trailing '\r' so String reproduces the input byte for byte.
type Document struct {
	lines    []string
	sections []Section
}

// Parse scans text for section headers. It never fails: text without headers
// yields a document with no sections.
func Parse(text string) *Document {
	d := &Document{lines: strings.Split(text, "\n")}
	for i, line := range d.lines {
		name, ok := headerName(line)
		if !ok {
			continue
		}
		if n := len(d.sections); n > 0 {
			d.sections[n-1].End = i
		}
		d.sections = append(d.sections, Section{Name: name, Start: i, End: len(d.lines)})
	}
	return d
}

// String joins the lines back into text.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// Sections returns the located sections in file order.
func (d *Document) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Interface returns the first [Interface] section.
func (d *Document) Interface() (Section, bool) {
	for _, s := range d.sections {
		if strings.EqualFold(s.Name, "Interface") {
			return s, true
		}
	}
	return Section{}, false
}

// Body returns the text of s including its header line.
func (d *Document) Body(s Section) string {
	return strings.Join(d.lines[s.Start:s.End], "\n")
}

// headerName accepts "[Name]" with an optional trailing "#" or ";" comment.
func headerName(line string) (string, bool) {
	t := strings.TrimSpace(stripComment(line))
	if len(t) < 2 || t[0] != '[' || t[len(t)-1] != ']' {
		return "", false
	}
	return strings.TrimSpace(t[1 : len(t)-1]), true
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		return line[:i]
	}
	return line
}

// directive splits a "Key = Value" line. Comments and blank lines are not directives.
func directive(line string) (key, value string, ok bool) {
	t := strings.TrimSpace(line)
	if t == "" || t[0] == '#' || t[0] == ';' {
		return "", "", false
	}
	k, v, found := strings.Cut(t, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Directive is one "Key = Value" line of a section.
type Directive struct {
	Key   string
	Value string
	Line  int
}

// Directives returns the key/value lines of s in order, skipping the header,
// comments and blank lines.
func (d *Document) Directives(s Section) []Directive {
	var out []Directive
	for i := s.Start + 1; i < s.End; i++ {
		if k, v, ok := directive(d.lines[i]); ok {
			out = append(out, Directive{Key: k, Value: v, Line: i})
		}
	}
	return out
}
