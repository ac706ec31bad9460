package content

import "sort"

// Orphan is a skill referenced by a record but absent from the taxonomy.
type Orphan struct {
	Skill string `json:"skill"`
	Owner string `json:"owner"`
	Kind  string `json:"kind"`
}

// Report collects taxonomy cross-reference problems found at load time.
// None of them block publication of the snapshot.
type Report struct {
	Orphans    []Orphan `json:"orphans"`
	Duplicates []string `json:"duplicates"`
}

// OK reports whether the snapshot passed validation cleanly.
func (r Report) OK() bool {
	return len(r.Orphans) == 0 && len(r.Duplicates) == 0
}

// Validate cross-checks every skill reference against the taxonomy.
func Validate(snap *Snapshot) (report Report) {
	report = Report{Orphans: []Orphan{}, Duplicates: []string{}}
	if snap == nil {
		return report
	}

	seen := make(map[string]int)
	for _, c := range snap.Skills {
		for _, skill := range c.Skills {
			seen[skill]++
		}
	}
	for skill, n := range seen {
		if n > 1 {
			report.Duplicates = append(report.Duplicates, skill)
		}
	}
	sort.Strings(report.Duplicates)

	check := func(kind, owner string, skills []string) {
		for _, skill := range skills {
			if _, ok := seen[skill]; !ok {
				report.Orphans = append(report.Orphans, Orphan{Skill: skill, Owner: owner, Kind: kind})
			}
		}
	}
	for _, p := range snap.Projects {
		check("project", p.Title, p.Skills)
	}
	for _, e := range snap.Experiences {
		check(string(KindExperience), e.Title, e.Skills)
	}
	for _, f := range snap.Formations {
		check(string(KindFormation), f.Diploma, f.Skills)
	}

	return report
}
