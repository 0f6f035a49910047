package esocial

type Problem struct {
	EventID    string    `json:"eventId"`
	Kind       EventKind `json:"kind"`
	WorkerName string    `json:"workerName,omitempty"`
	Violations []string  `json:"violations"`
}

// Summary reports a batch without dropping any event from the count.
type Summary struct {
	Total    int       `json:"total"`
	Valid    int       `json:"valid"`
	Invalid  int       `json:"invalid"`
	Problems []Problem `json:"problems"`
}

func Summarize(events []GeneratedEvent) Summary {
	s := Summary{Total: len(events), Problems: []Problem{}}
	for _, ev := range events {
		if ev.Outcome.Valid() {
			s.Valid++
			continue
		}
		s.Invalid++
		s.Problems = append(s.Problems, Problem{
			EventID:    ev.ID.String(),
			Kind:       ev.Kind,
			WorkerName: ev.WorkerName,
			Violations: ev.Outcome.Messages(),
		})
	}
	return s
}
