package events

// Recorder is an in-memory Publisher for tests.
type Recorder struct {
	Created []IncidentCreated
	Merged  []IncidentMerged
}

func (r *Recorder) PublishIncidentCreated(e IncidentCreated) error {
	r.Created = append(r.Created, e)
	return nil
}

func (r *Recorder) PublishIncidentMerged(e IncidentMerged) error {
	r.Merged = append(r.Merged, e)
	return nil
}
