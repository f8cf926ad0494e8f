package fetch

import (
	"fmt"
	"os"
	"slices"

	"github.com/dalemusser/strataboard/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// Defaults are the canned payloads used when an analytics source is
// unavailable. Every other source defaults to its zero value or an empty
// list.
type Defaults struct {
	Competency        []models.CompetencyShare  `yaml:"competency"`
	Engagement        []models.SeriesPoint      `yaml:"engagement"`
	Participation     []models.SeriesPoint      `yaml:"participation"`
	CompetencyTargets []models.CompetencyTarget `yaml:"competency_targets"`
}

// BuiltinDefaults returns the canned payloads compiled into the binary.
func BuiltinDefaults() Defaults {
	return Defaults{
		Competency: []models.CompetencyShare{
			{Name: "Pedagogy", Percent: 35},
			{Name: "Digital Literacy", Percent: 25},
			{Name: "Classroom Management", Percent: 20},
			{Name: "Assessment", Percent: 20},
		},
		Engagement: []models.SeriesPoint{
			{Label: "Week 1", Value: 0},
			{Label: "Week 2", Value: 0},
			{Label: "Week 3", Value: 0},
			{Label: "Week 4", Value: 0},
		},
		Participation: []models.SeriesPoint{
			{Label: "Enrolled", Value: 0},
			{Label: "Active", Value: 0},
			{Label: "Completed", Value: 0},
		},
		CompetencyTargets: []models.CompetencyTarget{},
	}
}

// LoadDefaults reads canned payloads from a YAML file. Sections missing
// from the file keep their built-in values.
func LoadDefaults(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("read defaults: %w", err)
	}

	var file Defaults
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Defaults{}, fmt.Errorf("parse defaults %s: %w", path, err)
	}

	d := BuiltinDefaults()
	if len(file.Competency) > 0 {
		d.Competency = file.Competency
	}
	if len(file.Engagement) > 0 {
		d.Engagement = file.Engagement
	}
	if len(file.Participation) > 0 {
		d.Participation = file.Participation
	}
	if len(file.CompetencyTargets) > 0 {
		d.CompetencyTargets = file.CompetencyTargets
	}
	return d, nil
}

// clone returns a deep copy so a snapshot never shares backing arrays
// with the canned values.
func (d Defaults) clone() Defaults {
	return Defaults{
		Competency:        slices.Clone(d.Competency),
		Engagement:        slices.Clone(d.Engagement),
		Participation:     slices.Clone(d.Participation),
		CompetencyTargets: slices.Clone(d.CompetencyTargets),
	}
}
