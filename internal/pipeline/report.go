package pipeline

import "time"

// Report is an immutable, JSON-serializable view of a pipeline taken at a
// point in time. Steps appear in template declaration order.
type Report struct {
	ID           string     `json:"id"`
	TemplateName string     `json:"template_name"`
	SubjectID    string     `json:"subject_id"`
	Version      string     `json:"version"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Steps        []StepReport `json:"steps"`
}

// StepReport is the per-step slice of a Report.
type StepReport struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Stage        Stage      `json:"stage"`
	Command      string     `json:"command"`
	Status       Status     `json:"status"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Log          string     `json:"log,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Snapshot captures the current state of the pipeline and all its steps.
func (p *Pipeline) Snapshot() Report {
	steps := p.Steps()
	report := Report{
		ID:           p.ID,
		TemplateName: p.TemplateName,
		SubjectID:    p.SubjectID,
		Version:      p.Version,
		Status:       p.Status(),
		CreatedAt:    p.createdAt,
		StartedAt:    p.StartedAt(),
		CompletedAt:  p.CompletedAt(),
		Steps:        make([]StepReport, 0, len(steps)),
	}
	for _, s := range steps {
		deps := make([]string, len(s.Dependencies))
		copy(deps, s.Dependencies)
		report.Steps = append(report.Steps, StepReport{
			ID:           s.ID,
			Name:         s.Name,
			Stage:        s.Stage,
			Command:      s.Command,
			Status:       s.Status(),
			Dependencies: deps,
			Log:          s.Log(),
			StartedAt:    s.StartedAt(),
			CompletedAt:  s.CompletedAt(),
		})
	}
	return report
}
