package training

import "time"

// PerformedSet is the realized record of one set, together with the
// targets that were prescribed for it at the time.
type PerformedSet struct {
	Index             int     `json:"index"`
	Type              SetType `json:"type"`
	Weight            float64 `json:"weight"`
	Reps              int     `json:"reps"`
	RestSeconds       int     `json:"restSeconds"`
	Complete          bool    `json:"complete"`
	TargetWeight      float64 `json:"targetWeight"`
	TargetReps        int     `json:"targetReps"`
	TargetRestSeconds int     `json:"targetRestSeconds"`
}

// Performance is the realized record of one exercise within one session.
type Performance struct {
	ID             int            `json:"id"`
	SessionID      int            `json:"sessionId"`
	PrescriptionID int            `json:"prescriptionId"`
	ExerciseID     string         `json:"exerciseId"`
	CompletedAt    time.Time      `json:"completedAt"`
	Sets           []PerformedSet `json:"sets"`
}

// CompletedSets returns only the sets marked complete, in index order.
// Incomplete sets are never evidence for any rule.
func (p *Performance) CompletedSets() []PerformedSet {
	var completed []PerformedSet
	for _, s := range p.Sets {
		if s.Complete {
			completed = append(completed, s)
		}
	}
	return completed
}

// CompletedWorkingSets returns the completed sets labeled working.
func (p *Performance) CompletedWorkingSets() []PerformedSet {
	var working []PerformedSet
	for _, s := range p.Sets {
		if s.Complete && s.Type == SetTypeWorking {
			working = append(working, s)
		}
	}
	return working
}

// TopWorkingWeight returns the heaviest completed working-set weight,
// falling back to the heaviest completed set of any type.
func (p *Performance) TopWorkingWeight() float64 {
	var top float64
	var found bool
	for _, s := range p.Sets {
		if s.Complete && s.Type == SetTypeWorking && s.Weight > top {
			top = s.Weight
			found = true
		}
	}
	if found {
		return top
	}
	for _, s := range p.Sets {
		if s.Complete && s.Weight > top {
			top = s.Weight
		}
	}
	return top
}

// Session groups the performances recorded in one visit.
type Session struct {
	ID           int           `json:"id"`
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt"`
	Performances []Performance `json:"performances"`
}

// PerformanceFor returns the performance recorded for the given
// prescription in this session, if any.
func (s *Session) PerformanceFor(prescriptionID int) (*Performance, bool) {
	for i := range s.Performances {
		if s.Performances[i].PrescriptionID == prescriptionID {
			return &s.Performances[i], true
		}
	}
	return nil, false
}

// EvidenceWindowSize is the maximum number of past performances a rule
// may see for one exercise.
const EvidenceWindowSize = 10

// EvidenceWindow is a bounded, most-recent-first history of past
// performances for one exercise.
type EvidenceWindow []Performance

// Prepend returns a new window with perf as the most recent entry,
// re-capped at EvidenceWindowSize.
func (w EvidenceWindow) Prepend(perf Performance) EvidenceWindow {
	window := make(EvidenceWindow, 0, len(w)+1)
	window = append(window, perf)
	window = append(window, w...)
	if len(window) > EvidenceWindowSize {
		window = window[:EvidenceWindowSize]
	}
	return window
}

// Latest returns up to n most recent performances.
func (w EvidenceWindow) Latest(n int) []Performance {
	if n > len(w) {
		n = len(w)
	}
	return w[:n]
}
