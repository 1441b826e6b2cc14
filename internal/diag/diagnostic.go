package diag

import "strings"

// Subject locates a diagnostic: a file and a path inside it.
type Subject struct {
	File string
	Path string
}

func (s Subject) String() string {
	switch {
	case s.File == "":
		return s.Path
	case s.Path == "":
		return s.File
	}
	return s.File + ":" + s.Path
}

// Child returns a subject nested under s, e.g. s.Child("method[2]").
func (s Subject) Child(elem string) Subject {
	if s.Path == "" {
		return Subject{File: s.File, Path: elem}
	}
	var sb strings.Builder
	sb.Grow(len(s.Path) + 1 + len(elem))
	sb.WriteString(s.Path)
	sb.WriteByte('.')
	sb.WriteString(elem)
	return Subject{File: s.File, Path: sb.String()}
}

type Note struct {
	Subject Subject
	Msg     string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  Subject
	Notes    []Note
}

// New builds a diagnostic without notes.
func New(sev Severity, code Code, subject Subject, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Subject: subject, Message: msg}
}

func NewError(code Code, subject Subject, msg string) Diagnostic {
	return New(SevError, code, subject, msg)
}

// WithNote returns d with one more note appended.
func (d Diagnostic) WithNote(subject Subject, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Subject: subject, Msg: msg})
	return d
}
