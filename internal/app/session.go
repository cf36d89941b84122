package app

import (
	"context"

	"farmers-connect/internal/form"
	"farmers-connect/internal/inference"
	"farmers-connect/internal/refdata"
	"farmers-connect/internal/submission"
)

// FormSession is one open form: its field state, submission guard and
// reference options.
type FormSession struct {
	store        *form.Store
	guard        *submission.Guard
	orchestrator *inference.Orchestrator
	loader       *refdata.Loader
}

func (s *FormSession) Schema() form.Schema {
	return s.store.Schema()
}

func (s *FormSession) Fields() []form.Field {
	return s.store.Fields()
}

func (s *FormSession) Set(name, value string) error {
	return s.store.Set(name, value)
}

func (s *FormSession) SetAll(values map[string]string) error {
	return s.store.SetAll(values)
}

func (s *FormSession) Get(name string) string {
	return s.store.Get(name)
}

func (s *FormSession) OnFieldChange(l form.ChangeListener) {
	s.store.OnChange(l)
}

// Options returns the loaded reference options; empty for forms without
// choice fields or when the load failed.
func (s *FormSession) Options() refdata.Options {
	if s.loader == nil {
		return refdata.Options{}
	}
	return s.loader.Options()
}

// Choices lists the selectable values of a choice field.
func (s *FormSession) Choices(field string) []string {
	f, ok := s.store.Schema().Field(field)
	if !ok {
		return nil
	}
	return s.Options().For(f.Choices)
}

// Status is what the result slot shows.
func (s *FormSession) Status() submission.Status {
	return s.guard.Status()
}

func (s *FormSession) OnStatusChange(l submission.Listener) {
	s.guard.OnChange(l)
}

// Submit sends the current field values.
func (s *FormSession) Submit(ctx context.Context) inference.Result {
	return s.orchestrator.Submit(ctx, s.store.Snapshot())
}
