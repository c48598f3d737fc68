package aggregate

import "newsiq/internal/article"

// BranchResult is what one source produced: articles or an error, never both.
type BranchResult struct {
	Source   article.SourceType
	Articles []article.Article
	Err      error
}

type Outcome int

const (
	// Complete means every selected source answered.
	Complete Outcome = iota
	// Partial means some, but not all, selected sources failed.
	Partial
	// Failed means every selected source failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	default:
		return "failed"
	}
}

// Result is the merged feed plus the per-source outcomes that produced it.
type Result struct {
	Articles []article.Article
	Branches []BranchResult
}

// FailedSources lists the sources whose branch failed, in selection order.
func (r Result) FailedSources() []article.SourceType {
	var failed []article.SourceType
	for _, b := range r.Branches {
		if b.Err != nil {
			failed = append(failed, b.Source)
		}
	}
	return failed
}

// Outcome classifies the result from branch counts alone. A result with no
// branches is Complete with zero articles.
func (r Result) Outcome() Outcome {
	failed := len(r.FailedSources())
	switch {
	case failed == 0:
		return Complete
	case failed < len(r.Branches):
		return Partial
	default:
		return Failed
	}
}
