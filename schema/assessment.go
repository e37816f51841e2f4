package schema

// RiskAssessment is the result of scoring one observation under one policy.
type RiskAssessment struct {
	Policy           string             `json:"policy"`
	PolicyVersion    int                `json:"policy_version"`
	Transform        TransformKind      `json:"transform"`
	DomainScores     map[Domain]float64 `json:"domain_scores"`
	TotalScore       float64            `json:"total_score"`
	Probability      *float64           `json:"probability,omitempty"`     // logistic only
	CompositeIndex   *float64           `json:"composite_index,omitempty"` // composite only
	RiskPercent      float64            `json:"risk_percent"`
	Level            Level              `json:"level"`
	Confidence       float64            `json:"confidence"`
	ConfidenceMethod ConfidenceMethod   `json:"confidence_method"`
	Explanations     []string           `json:"explanations"`
	FiredRules       []string           `json:"fired_rules"`
}

// DomainScore returns the sub-score for a domain, zero when absent.
func (a RiskAssessment) DomainScore(d Domain) float64 {
	return a.DomainScores[d]
}
