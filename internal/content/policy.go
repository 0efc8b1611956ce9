package content

// Policy captures the per-type rules the generation and audit stages consult:
// the audit criteria set and the word bounds enforced by the validator. The
// table is data, not code; config may override criteria and bounds per type.
type Policy struct {
	Criteria []string
	MinWords int
	MaxWords int
}

// PolicySet maps every content type to its policy.
type PolicySet map[Type]Policy

// DefaultPolicies returns the built-in policy table. Note the deliberate
// criteria substitution for outros: they are judged on past-tense consistency
// and brevity instead of the length criterion used for intros.
func DefaultPolicies() PolicySet {
	return PolicySet{
		TypeIntro: {
			Criteria: []string{"length", "tone", "era_consistency", "song_reference"},
			MinWords: 8,
			MaxWords: 60,
		},
		TypeOutro: {
			Criteria: []string{"past_tense", "brevity", "tone", "song_reference"},
			MinWords: 5,
			MaxWords: 40,
		},
		TypeTime: {
			Criteria: []string{"time_accuracy", "brevity", "tone"},
			MinWords: 5,
			MaxWords: 30,
		},
		TypeWeather: {
			Criteria: []string{"condition_match", "brevity", "tone"},
			MinWords: 8,
			MaxWords: 45,
		},
	}
}

// Get returns the policy for a type, falling back to the built-in default
// when the set has no entry.
func (p PolicySet) Get(t Type) Policy {
	if policy, ok := p[t]; ok {
		return policy
	}
	return DefaultPolicies()[t]
}

// Clone returns a deep copy of the policy set.
func (p PolicySet) Clone() PolicySet {
	cp := make(PolicySet, len(p))
	for t, policy := range p {
		criteria := make([]string, len(policy.Criteria))
		copy(criteria, policy.Criteria)
		policy.Criteria = criteria
		cp[t] = policy
	}
	return cp
}
