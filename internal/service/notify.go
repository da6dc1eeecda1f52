package service

import "tourops/internal/model"

// Notifier is told about every committed mutation.
type Notifier interface {
	Publish(kind model.Kind, action model.ChangeAction, id string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(kind model.Kind, action model.ChangeAction, id string)

func (f NotifyFunc) Publish(kind model.Kind, action model.ChangeAction, id string) {
	f(kind, action, id)
}

// Notifiers fans an event out to each element. Nil entries are skipped.
type Notifiers []Notifier

func (ns Notifiers) Publish(kind model.Kind, action model.ChangeAction, id string) {
	for _, n := range ns {
		if n != nil {
			n.Publish(kind, action, id)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Publish(model.Kind, model.ChangeAction, string) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
