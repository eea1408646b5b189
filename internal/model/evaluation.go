package model

type EvaluationCriterion struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type EvaluationSection struct {
	Title    string                `json:"title"`
	Criteria []EvaluationCriterion `json:"criteria"`
}

// EvaluationTemplate is the rubric of one evaluation type (self, peer,
// cross, final) for a management.
type EvaluationTemplate struct {
	ID       int64               `json:"id"`
	Type     string              `json:"type"`
	Name     string              `json:"name"`
	Sections []EvaluationSection `json:"sections"`
}

func (t *EvaluationTemplate) CriteriaCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Criteria)
	}
	return n
}

const ProposalPending = "pending"

type ProposalPart struct {
	Status string `json:"status"`
}

// ProposalStatus is the group's submission state for both proposal parts.
type ProposalStatus struct {
	PartA ProposalPart `json:"part_a"`
	PartB ProposalPart `json:"part_b"`
}

func (p *ProposalStatus) Pending() bool {
	return p.PartA.Status == ProposalPending || p.PartB.Status == ProposalPending
}
