package domain

import "strings"

// TerminalID — идентификатор кассового терминала (POS1, POS2, ...).
type TerminalID string

// AggregateTerminal — псевдотерминал, объединяющий все терминалы.
const AggregateTerminal TerminalID = "ALL"

// ParseTerminalID нормализует идентификатор терминала.
func ParseTerminalID(s string) TerminalID {
	return TerminalID(strings.ToUpper(strings.TrimSpace(s)))
}

func (t TerminalID) String() string {
	return string(t)
}

// IsAggregate сообщает, является ли терминал агрегирующим.
func (t TerminalID) IsAggregate() bool {
	return t == AggregateTerminal
}

// TerminalSet — фиксированный набор настроенных терминалов в порядке конфигурации.
type TerminalSet struct {
	ordered []TerminalID
	known   map[TerminalID]struct{}
}

// NewTerminalSet создаёт набор терминалов, отбрасывая пустые значения, дубликаты и ALL.
func NewTerminalSet(ids ...TerminalID) TerminalSet {
	set := TerminalSet{known: make(map[TerminalID]struct{}, len(ids))}
	for _, id := range ids {
		id = ParseTerminalID(string(id))
		if id == "" || id.IsAggregate() {
			continue
		}
		if _, ok := set.known[id]; ok {
			continue
		}
		set.known[id] = struct{}{}
		set.ordered = append(set.ordered, id)
	}

	return set
}

// Terminals возвращает настоящие терминалы без ALL.
func (s TerminalSet) Terminals() []TerminalID {
	out := make([]TerminalID, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// WithAggregate возвращает терминалы и ALL последним элементом.
func (s TerminalSet) WithAggregate() []TerminalID {
	return append(s.Terminals(), AggregateTerminal)
}

// IsSelling сообщает, может ли терминал проводить продажи.
func (s TerminalSet) IsSelling(id TerminalID) bool {
	_, ok := s.known[id]
	return ok
}

// IsKnown сообщает, известен ли терминал, включая ALL.
func (s TerminalSet) IsKnown(id TerminalID) bool {
	return id.IsAggregate() || s.IsSelling(id)
}
