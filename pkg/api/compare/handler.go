package compare

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"bendcalc/pkg/core/compare"
)

// Handler runs comparison batches as background jobs the client polls.
type Handler struct {
	registry *compare.Registry
	cache    *compare.Cache

	mu   sync.Mutex
	jobs map[string]*job
}

type job struct {
	cancel context.CancelFunc

	mu      sync.Mutex
	rows    []compare.PairResult
	done    bool
	summary compare.Summary
}

func NewHandler(registry *compare.Registry, cache *compare.Cache) *Handler {
	return &Handler{registry: registry, cache: cache, jobs: make(map[string]*job)}
}

type startRequest struct {
	FilesA []string `json:"files_a"`
	FilesB []string `json:"files_b"`
	Type   string   `json:"type" binding:"required"`
}

var fileTypes = map[string]compare.FileType{
	"STEP": compare.TypeSTEP,
	"IGES": compare.TypeIGES,
	"DXF":  compare.TypeDXF,
	"PDF":  compare.TypePDF,
	"DWG":  compare.TypeDWG,
}

// Start launches a batch and answers with its job id.
func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fileType, ok := fileTypes[req.Type]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown file type"})
		return
	}
	if len(req.FilesA) == 0 && len(req.FilesB) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files to compare"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	worker := compare.NewWorker(h.registry, h.cache)
	j := &job{cancel: cancel}

	h.mu.Lock()
	h.jobs[worker.ID.String()] = j
	h.mu.Unlock()

	results := make(chan compare.PairResult)
	summaryCh := make(chan compare.Summary, 1)
	go func() {
		summaryCh <- worker.Run(ctx, req.FilesA, req.FilesB, fileType, results)
	}()
	go func() {
		for row := range results {
			j.mu.Lock()
			j.rows = append(j.rows, row)
			j.mu.Unlock()
		}
		// results is closed, so every row is recorded before the job
		// flips to done.
		summary := <-summaryCh
		j.mu.Lock()
		j.summary = summary
		j.done = true
		j.mu.Unlock()
		if h.cache != nil {
			if err := h.cache.Save(); err != nil {
				log.Printf("fingerprint cache save failed: %v", err)
			}
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"job_id": worker.ID.String()})
}

type statusResponse struct {
	Rows      []compare.PairResult `json:"rows"`
	Progress  int                  `json:"progress"`
	Done      bool                 `json:"done"`
	Cancelled bool                 `json:"cancelled"`
	Pairs     int                  `json:"pairs"`
}

// Status reports the rows produced so far.
func (h *Handler) Status(c *gin.Context) {
	j, ok := h.lookup(c)
	if !ok {
		return
	}

	j.mu.Lock()
	resp := statusResponse{
		Rows:      append([]compare.PairResult(nil), j.rows...),
		Done:      j.done,
		Cancelled: j.summary.Cancelled,
		Pairs:     j.summary.Pairs,
	}
	j.mu.Unlock()

	if n := len(resp.Rows); n > 0 {
		resp.Progress = resp.Rows[n-1].Progress
	}
	if resp.Rows == nil {
		resp.Rows = []compare.PairResult{}
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel stops a running batch at the next pair boundary.
func (h *Handler) Cancel(c *gin.Context) {
	j, ok := h.lookup(c)
	if !ok {
		return
	}
	j.cancel()
	c.Status(http.StatusNoContent)
}

func (h *Handler) lookup(c *gin.Context) (*job, bool) {
	h.mu.Lock()
	j, ok := h.jobs[c.Param("id")]
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return nil, false
	}
	return j, true
}
