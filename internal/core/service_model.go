package core

// Service job statuses. Completed accepts the accented spelling on load.
const (
	ServiceActive    = "EM ANDAMENTO"
	ServiceCompleted = "CONCLUIDO"
)

// Ratings run from MinRating to MaxRating; 0 means not rated.
const (
	MinRating = 1
	MaxRating = 5
)

// DefaultServiceDuration is the planned length, in days, of a job registered
// without an end date.
const DefaultServiceDuration = 7

// ServiceJob is a service contracted from a supplier, tracked from start to
// the requester's rating.
type ServiceJob struct {
	Supplier    string `json:"supplier"`
	Requester   string `json:"requester"`
	Start       Date   `json:"start"`
	PlannedEnd  Date   `json:"planned_end"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`

	Row   int               `json:"row"`
	Extra map[string]string `json:"extra,omitempty"`
}

func (j ServiceJob) IsActive() bool { return normalizeText(j.Status) == ServiceActive }

func (j ServiceJob) IsCompleted() bool {
	s := normalizeText(j.Status)
	return s == ServiceCompleted || s == "CONCLUÍDO"
}

// NewServiceJob is a job as registered by a requester. Zero dates take the
// defaults: start today, planned end DefaultServiceDuration days after start.
type NewServiceJob struct {
	Supplier    string `json:"supplier"`
	Requester   string `json:"requester"`
	Start       Date   `json:"start"`
	PlannedEnd  Date   `json:"planned_end"`
	Description string `json:"description"`
}

// ServiceRating closes a job.
type ServiceRating struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
