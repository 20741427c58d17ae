package customize

// Keywords is the static classification vocabulary injected into the
// detector and formatter. All matching is case-insensitive substring
// or prefix matching against trimmed paragraph text.
type Keywords struct {
	// ProjectExclude blocks section headings from being mistaken for
	// project headers.
	ProjectExclude []string
	// JobTitle marks role lines such as "Senior Software Engineer".
	JobTitle []string
	// Project marks generic project/role lines.
	Project []string
	// SectionEnd closes a responsibilities region.
	SectionEnd []string
	// BulletMarkers is the canonical marker set, dash variants included.
	BulletMarkers []string
}

// DefaultKeywords returns the vocabulary tuned on real resume corpora.
func DefaultKeywords() Keywords {
	return Keywords{
		ProjectExclude: []string{
			"summary", "skills", "education", "achievements", "responsibilities:",
		},
		JobTitle: []string{
			"manager", "developer", "engineer", "analyst", "lead",
			"senior", "junior", "architect", "consultant", "specialist",
			"coordinator", "supervisor", "director", "designer",
			"tester", "qa", "devops",
		},
		Project: []string{
			"project", "team", "role", "position", "intern",
			"trainee", "associate",
		},
		SectionEnd: []string{
			"achievements", "technologies", "tools", "key",
		},
		BulletMarkers: []string{
			"•", "●", "◦", "▪", "▫", "‣", "*", "-", "–", "—", "−",
		},
	}
}
