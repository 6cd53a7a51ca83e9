package insdc

import (
	"github.com/charmbracelet/log"
)

// EventKind identifies an Event.
type EventKind int

const (
	EventStartRecord EventKind = iota + 1
	EventHeaderField
	EventStartFeatureTable
	EventFeature
	EventEndFeatureTable
	EventFooterField
	EventSequence
	EventEndRecord
	EventWarning
)

var eventKindNames = map[EventKind]string{
	EventStartRecord:       "start-record",
	EventHeaderField:       "header-field",
	EventStartFeatureTable: "start-feature-table",
	EventFeature:           "feature",
	EventEndFeatureTable:   "end-feature-table",
	EventFooterField:       "footer-field",
	EventSequence:          "sequence",
	EventEndRecord:         "end-record",
	EventWarning:           "warning",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Field is a named header or footer value.
type Field struct {
	Name  FieldName
	Value string
}

// Event is one step of a record. Only the member matching Kind is set.
type Event struct {
	Kind     EventKind
	Dialect  string
	Field    Field   // EventHeaderField, EventFooterField
	Feature  Feature // EventFeature
	Sequence string  // EventSequence
	Message  string  // EventWarning
}

// Handler consumes scanner events. A non-nil error aborts the scan and is
// returned unchanged from Scanner.Next.
type Handler interface {
	Handle(Event) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(Event) error

func (f HandlerFunc) Handle(ev Event) error {
	return f(ev)
}

// Emitter is handed to a Dialect while a record is scanned. It stamps events
// with the dialect name and forwards them to the handler.
type Emitter struct {
	h       Handler
	dialect string
	logger  *log.Logger
	debug   int
}

// Header emits a header field.
func (e *Emitter) Header(name FieldName, value string) error {
	return e.emit(Event{Kind: EventHeaderField, Field: Field{Name: name, Value: value}})
}

// Footer emits a footer field.
func (e *Emitter) Footer(name FieldName, value string) error {
	return e.emit(Event{Kind: EventFooterField, Field: Field{Name: name, Value: value}})
}

// Warn logs a recoverable oddity and emits it as a warning event.
func (e *Emitter) Warn(msg string, keyvals ...any) error {
	e.logger.Warn(msg, append([]any{"dialect", e.dialect}, keyvals...)...)
	return e.emit(Event{Kind: EventWarning, Message: msg})
}

// Debug logs msg when the scanner's debug level is at least level.
func (e *Emitter) Debug(level int, msg string, keyvals ...any) {
	if e.debug >= level {
		e.logger.Debug(msg, append([]any{"dialect", e.dialect}, keyvals...)...)
	}
}

func (e *Emitter) emit(ev Event) error {
	ev.Dialect = e.dialect
	return e.h.Handle(ev)
}
