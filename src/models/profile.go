package models

type ResearcherProfile struct {
	UserID int `db:"user_id"`

	Specialties []string `db:"specialties"`
	Interests   []string `db:"interests"`
	Bio         string   `db:"bio"`
}

// MatchesConditions reports whether any of the researcher's specialties or
// interests appear in the given (normalized) condition tags.
func (p *ResearcherProfile) MatchesConditions(conditions []string) bool {
	if p == nil {
		return false
	}
	set := make(map[string]bool, len(conditions))
	for _, c := range conditions {
		set[c] = true
	}
	for _, s := range p.Specialties {
		if set[s] {
			return true
		}
	}
	for _, i := range p.Interests {
		if set[i] {
			return true
		}
	}
	return false
}
