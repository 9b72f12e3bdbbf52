package compare

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// PairResult is the outcome for one index across the two file lists.
// Equal is nil when the pair is incomparable (an error on either side
// or a missing counterpart), which is distinct from false.
type PairResult struct {
	Index    int        `json:"index"`
	PropsA   Properties `json:"props_a"`
	StatusA  string     `json:"status_a"`
	PropsB   Properties `json:"props_b"`
	StatusB  string     `json:"status_b"`
	Equal    *bool      `json:"equal"`
	Progress int        `json:"progress"`
}

// Summary closes a batch run.
type Summary struct {
	Pairs     int  `json:"pairs"`
	Cancelled bool `json:"cancelled"`
}

// Worker drives a comparison batch. Pairs run sequentially so progress
// is monotonic; cancellation is checked between pairs only, a single
// extraction is never preempted.
type Worker struct {
	ID       uuid.UUID
	registry *Registry
	cache    *Cache
}

// NewWorker creates a batch worker. cache may be nil.
func NewWorker(registry *Registry, cache *Cache) *Worker {
	return &Worker{ID: uuid.New(), registry: registry, cache: cache}
}

// Run walks both lists in index order up to the longer one, sending a
// PairResult per pair, and closes results when done. It returns the
// final summary, with Cancelled set when the context ended the batch
// at a pair boundary.
func (w *Worker) Run(ctx context.Context, filesA, filesB []string, fileType FileType, results chan<- PairResult) Summary {
	defer close(results)

	total := len(filesA)
	if len(filesB) > total {
		total = len(filesB)
	}
	if total == 0 {
		return Summary{}
	}

	done := 0
	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			log.Printf("comparison %s cancelled after %d of %d pairs", w.ID, done, total)
			return Summary{Pairs: done, Cancelled: true}
		}
		results <- w.comparePair(i, total, filesA, filesB, fileType)
		done++
	}
	return Summary{Pairs: done}
}

func (w *Worker) comparePair(i, total int, filesA, filesB []string, fileType FileType) PairResult {
	res := PairResult{Index: i, Progress: (i + 1) * 100 / total}

	var pathA, pathB string
	if i < len(filesA) {
		pathA = filesA[i]
	}
	if i < len(filesB) {
		pathB = filesB[i]
	}

	var hashA, hashB string
	if pathA != "" && pathB != "" {
		hashA, _ = FileSHA256(pathA)
		hashB, _ = FileSHA256(pathB)
		// Byte-identical files are equal no matter what the parsers
		// would make of them.
		if hashA != "" && hashA == hashB {
			props := Properties{"Hash idêntico"}
			res.PropsA, res.StatusA = props, StatusOK
			res.PropsB, res.StatusB = props, StatusOK
			equal := true
			res.Equal = &equal
			return res
		}
	}

	res.PropsA, res.StatusA = w.sideProperties(pathA, hashA, fileType)
	res.PropsB, res.StatusB = w.sideProperties(pathB, hashB, fileType)

	if res.PropsA != nil && res.PropsB != nil {
		equal := res.PropsA.Equal(res.PropsB)
		res.Equal = &equal
	}
	return res
}

func (w *Worker) sideProperties(path, fileHash string, fileType FileType) (Properties, string) {
	if path == "" {
		return nil, StatusNoPair
	}
	if w.cache != nil && fileHash != "" {
		if props, ok := w.cache.Get(fileType, fileHash); ok {
			return props, StatusOK
		}
	}
	props, status := w.registry.Extract(fileType, path)
	if w.cache != nil && fileHash != "" && status == StatusOK {
		w.cache.Put(fileType, fileHash, props)
	}
	return props, status
}
