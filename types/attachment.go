package types

import "fmt"

// AttachmentConstraints are fixed for the lifetime of one staging session.
type AttachmentConstraints struct {
	MaxFileSizeBytes  int64    `json:"maxFileSizeBytes"`
	MaxTotalSizeBytes int64    `json:"maxTotalSizeBytes"`
	AllowedMimeTypes  []string `json:"allowedMimeTypes,omitempty"` // empty: any type
}

// CandidateOutcome is what happened to one candidate in AddCandidates.
type CandidateOutcome int

const (
	OutcomeAccepted CandidateOutcome = iota
	OutcomeDuplicate
	OutcomeRejected
)

func (o CandidateOutcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MarshalText lets the outcome show up as a word in JSON reports.
func (o CandidateOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *CandidateOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "accepted":
		*o = OutcomeAccepted
	case "duplicate":
		*o = OutcomeDuplicate
	case "rejected":
		*o = OutcomeRejected
	default:
		return fmt.Errorf("unknown candidate outcome %q", text)
	}
	return nil
}

// CandidateResult is the per-candidate line of a ValidationReport.
type CandidateResult struct {
	Index   int              `json:"index"`
	Name    string           `json:"name"`
	Size    int64            `json:"size"`
	Outcome CandidateOutcome `json:"outcome"`
	Reason  error            `json:"-"` // set only when Outcome is OutcomeRejected
}

// ValidationReport lists every candidate of one AddCandidates call in input order.
type ValidationReport struct {
	Results []CandidateResult `json:"results"`
}

// Accepted returns the results that were staged.
func (r ValidationReport) Accepted() []CandidateResult {
	return r.filter(OutcomeAccepted)
}

// Rejected returns the results that failed validation.
func (r ValidationReport) Rejected() []CandidateResult {
	return r.filter(OutcomeRejected)
}

func (r ValidationReport) HasRejections() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeRejected {
			return true
		}
	}
	return false
}

func (r ValidationReport) filter(outcome CandidateOutcome) []CandidateResult {
	out := make([]CandidateResult, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Outcome == outcome {
			out = append(out, res)
		}
	}
	return out
}

// StagingTotals is used by the UI for the "12.5 MB / 50 MB" indicator.
type StagingTotals struct {
	Count          int   `json:"count"`
	TotalSizeBytes int64 `json:"totalSizeBytes"`
}
