package ports

// ChangeNotifier is told after a collection's contents changed so live
// subscribers can receive a fresh snapshot.
type ChangeNotifier interface {
	Notify(topic string)
}

// NopNotifier discards notifications; handy in tests.
type NopNotifier struct{}

// Notify implements ChangeNotifier.
func (NopNotifier) Notify(string) {}
