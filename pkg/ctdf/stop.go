package ctdf

const UnknownStopName = "unknown"

// FirstWins holds a value that is either unset or set from exactly one
// source. Later offers never replace it.
type FirstWins[T any] struct {
	value  T
	source string
	set    bool
}

// Offer sets the value if it is still unset and reports whether it did.
func (f *FirstWins[T]) Offer(source string, value T) bool {
	if f.set {
		return false
	}

	f.value = value
	f.source = source
	f.set = true

	return true
}

func (f FirstWins[T]) Get() (T, bool) {
	return f.value, f.set
}

// Source is the identifier of the stop that supplied the value.
func (f FirstWins[T]) Source() (string, bool) {
	return f.source, f.set
}

func (f FirstWins[T]) IsSet() bool {
	return f.set
}

// StopInfo is a single summary for a whole batch, not one per stop.
type StopInfo struct {
	Name    FirstWins[string]
	Updated FirstWins[TimePoint]
}

type StopSummary struct {
	StopName  string     `json:"stopName" groups:"basic,detailed"`
	KnownStop bool       `json:"knownStop" groups:"detailed"`
	Updated   *TimePoint `json:"updated,omitempty" groups:"detailed"`
}

func (s *StopInfo) Summary() StopSummary {
	summary := StopSummary{
		StopName: UnknownStopName,
	}

	if name, ok := s.Name.Get(); ok {
		summary.StopName = name
		summary.KnownStop = true
	}

	if updated, ok := s.Updated.Get(); ok {
		summary.Updated = &updated
	}

	return summary
}

// UpdatedLabel is the server time as HH:MM, if the batch had one.
func (s StopSummary) UpdatedLabel() (string, bool) {
	if s.Updated == nil {
		return "", false
	}

	return s.Updated.Clock(), true
}
