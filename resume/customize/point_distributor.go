package customize

// maxEnhancedProjects caps how many projects receive new points.
// Enhancement focuses on the most prominent roles.
const maxEnhancedProjects = 3

// TechStacks maps technology names to ordered point lists while
// preserving the order technologies first appeared in the input.
type TechStacks struct {
	names  []string
	points map[string][]string
}

func NewTechStacks() *TechStacks {
	return &TechStacks{points: map[string][]string{}}
}

// Add appends points under name, registering the name on first use.
func (t *TechStacks) Add(name string, points ...string) {
	if _, ok := t.points[name]; !ok {
		t.names = append(t.names, name)
		t.points[name] = nil
	}
	t.points[name] = append(t.points[name], points...)
}

// Names returns technology names in first-appearance order.
func (t *TechStacks) Names() []string { return t.names }

// Points returns the ordered point list for name.
func (t *TechStacks) Points(name string) []string { return t.points[name] }

// TotalPoints counts points across all technologies.
func (t *TechStacks) TotalPoints() int {
	total := 0
	for _, name := range t.names {
		total += len(t.points[name])
	}
	return total
}

// IsEmpty reports whether no technology carries any point.
func (t *TechStacks) IsEmpty() bool {
	return t == nil || t.TotalPoints() == 0
}

// TechStacksFromFlat normalizes the flat (points, names) parser form
// into the mapping form by splitting points as evenly as possible
// over the names, earlier names taking the remainder.
func TechStacksFromFlat(points, names []string) *TechStacks {
	stacks := NewTechStacks()
	if len(points) == 0 || len(names) == 0 {
		return stacks
	}
	perTech := len(points) / len(names)
	remainder := len(points) % len(names)

	cursor := 0
	for i, name := range names {
		count := perTech
		if i < remainder {
			count++
		}
		if count == 0 {
			continue
		}
		stacks.Add(name, points[cursor:cursor+count]...)
		cursor += count
	}
	return stacks
}

// ProjectAllocation is one project's share of the distribution.
// InsertionPoint and ResponsibilitiesEnd are carried through from the
// detected Project unchanged.
type ProjectAllocation struct {
	Title               string
	Stacks              *TechStacks
	ProjectIndex        int
	InsertionPoint      int
	ResponsibilitiesEnd int
	TotalPoints         int
}

// DistributionResult is the outcome of one distribution pass.
// Computed fresh per request and never persisted.
type DistributionResult struct {
	Success      bool
	Error        string
	Distribution map[string]*ProjectAllocation
	PointsAdded  int
	ProjectsUsed int
}

// PointDistributor assigns points round-robin across the first
// min(3, M) detected projects without ever assigning the same point
// string to two projects.
type PointDistributor struct{}

func NewPointDistributor() *PointDistributor { return &PointDistributor{} }

// Distribute computes the assignment only; no document is touched.
func (d *PointDistributor) Distribute(projects []Project, stacks *TechStacks) DistributionResult {
	if len(projects) == 0 || stacks.IsEmpty() {
		return DistributionResult{Success: false, Error: "no projects or tech stacks found"}
	}

	top := projects
	if len(top) > maxEnhancedProjects {
		top = top[:maxEnhancedProjects]
	}

	perProject := d.roundRobin(stacks, len(top))

	distribution := make(map[string]*ProjectAllocation, len(top))
	pointsAdded := 0
	for i, project := range top {
		alloc := &ProjectAllocation{
			Title:               project.Title,
			Stacks:              perProject[i],
			ProjectIndex:        project.Index,
			InsertionPoint:      project.ResponsibilitiesStart,
			ResponsibilitiesEnd: project.ResponsibilitiesEnd,
			TotalPoints:         perProject[i].TotalPoints(),
		}
		distribution[project.Title] = alloc
		pointsAdded += alloc.TotalPoints
	}

	return DistributionResult{
		Success:      true,
		Distribution: distribution,
		PointsAdded:  pointsAdded,
		ProjectsUsed: len(distribution),
	}
}

// roundRobin walks every point in technology order behind a single
// rotating pointer shared across technologies, so fairness holds over
// the whole point set rather than per technology. A point already
// held by every eligible project is dropped, never duplicated.
func (d *PointDistributor) roundRobin(stacks *TechStacks, numProjects int) []*TechStacks {
	perProject := make([]*TechStacks, numProjects)
	assigned := make([]map[string]struct{}, numProjects)
	for i := range perProject {
		perProject[i] = NewTechStacks()
		assigned[i] = map[string]struct{}{}
	}

	next := 0
	for _, tech := range stacks.Names() {
		for _, point := range stacks.Points(tech) {
			for attempt := 0; attempt < numProjects; attempt++ {
				if _, dup := assigned[next][point]; !dup {
					perProject[next].Add(tech, point)
					assigned[next][point] = struct{}{}
					next = (next + 1) % numProjects
					break
				}
				next = (next + 1) % numProjects
			}
		}
	}
	return perProject
}
