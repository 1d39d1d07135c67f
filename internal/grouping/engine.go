package grouping

import "fmt"

// Result is one page of grouped reads plus batch totals.
type Result struct {
	Groups              []Group
	Total               int
	Page                int
	PerPage             int
	TotalPages          int
	OriginalCount       int
	ReductionPercentage float64
	Rejected            []RejectedRecord
}

// Run groups a batch of reads and returns the requested page of groups ordered
// by representative timestamp, newest first.
//
// Reads without a timestamp are listed in Result.Rejected and take no part in
// grouping; OriginalCount counts only the reads that were grouped.
func Run(records []Record, opts Options) (*Result, error) {
	groups, rejected, err := Partition(records, opts)
	if err != nil {
		return nil, err
	}
	original := len(records) - len(rejected)

	rankGroups(groups)
	return &Result{
		Groups:              paginate(groups, opts.Page, opts.PerPage),
		Total:               len(groups),
		Page:                opts.Page,
		PerPage:             opts.PerPage,
		TotalPages:          totalPages(len(groups), opts.PerPage),
		OriginalCount:       original,
		ReductionPercentage: reductionPercentage(len(groups), original),
		Rejected:            rejected,
	}, nil
}

// Partition splits the batch into event groups in formation order, without
// ranking or pagination.
func Partition(records []Record, opts Options) ([]Group, []RejectedRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if opts.Policy == PolicySimilarity && len(records) > opts.batchCeiling() {
		return nil, nil, fmt.Errorf("%w: %d records exceeds the similarity ceiling of %d",
			ErrBatchTooLarge, len(records), opts.batchCeiling())
	}

	sorted, rejected := LoadAndSort(records)

	var chunks [][]Record
	switch opts.Policy {
	case PolicySimilarity:
		chunks = groupSimilar(sorted, opts.WindowSeconds, opts.SimilarityThreshold)
	default:
		chunks = groupStrict(sorted, opts.WindowSeconds)
	}

	groups := make([]Group, 0, len(chunks))
	for i, chunk := range chunks {
		groups = append(groups, selectRepresentative(chunk, i))
	}
	return groups, rejected, nil
}
