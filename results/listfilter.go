package results

type TrialFilter struct {
	ExperimentID *string
	Model        *string
}

func (filter TrialFilter) SetExperimentID(v string) TrialFilter {
	filter.ExperimentID = &v
	return filter
}

func (filter TrialFilter) SetModel(v string) TrialFilter {
	filter.Model = &v
	return filter
}
