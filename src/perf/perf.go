package perf

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/jobs"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

type perfContextKeyType struct{}

// The key under which a request's RequestPerf travels in its context.
// RequestContext answers for this key itself; background contexts simply
// don't have one.
var PerfContextKey = perfContextKeyType{}

// ExtractPerf pulls the current RequestPerf out of the context. Work that
// runs outside a request (jobs, migrations) gets a throwaway instance so
// callers never need to nil-check.
func ExtractPerf(ctx context.Context) *RequestPerf {
	if p, ok := ctx.Value(PerfContextKey).(*RequestPerf); ok && p != nil {
		return p
	}
	return MakeNewRequestPerf("", "", "")
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

func (rp *RequestPerf) EndRequest() {
	for rp.EndBlock() {
	}
	rp.End = time.Now()
}

func (rp *RequestPerf) Checkpoint(category, description string) {
	now := time.Now()
	checkpoint := PerfBlock{
		Start:       now,
		End:         now,
		Category:    category,
		Description: description,
	}
	rp.Blocks = append(rp.Blocks, checkpoint)
}

// StartBlock opens a timing block and returns a handle that can close
// exactly that block. Callers that nest blocks strictly can ignore the
// handle and `defer rp.EndBlock()` instead.
func (rp *RequestPerf) StartBlock(category, description string) *BlockHandle {
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
	return &BlockHandle{perf: rp, idx: len(rp.Blocks) - 1}
}

// EndBlock closes the most recently opened block that is still open.
func (rp *RequestPerf) EndBlock() bool {
	for i := len(rp.Blocks) - 1; i >= 0; i -= 1 {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

type BlockHandle struct {
	perf *RequestPerf
	idx  int
}

func (b *BlockHandle) End() {
	if b.perf.Blocks[b.idx].End.IsZero() {
		b.perf.Blocks[b.idx].End = time.Now()
	}
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

// How many request runs we keep around for the perf admin endpoint.
const maxStoredRequests = 1000

type PerfStorage struct {
	AllRequests []RequestPerf
}

type PerfCollector struct {
	In          chan<- RequestPerf
	RequestCopy chan<- (chan<- PerfStorage)
}

func RunPerfCollector() (*PerfCollector, *jobs.Job) {
	job := jobs.New("perf collector")
	in := make(chan RequestPerf, 64)
	requestCopy := make(chan (chan<- PerfStorage))

	var storage PerfStorage

	go func() {
		defer job.Finish()

		for {
			select {
			case perf := <-in:
				storage.AllRequests = append(storage.AllRequests, perf)
				if len(storage.AllRequests) > maxStoredRequests {
					storage.AllRequests = storage.AllRequests[len(storage.AllRequests)-maxStoredRequests:]
				}
			case resultChan := <-requestCopy:
				resultChan <- storage
			case <-job.Canceled():
				return
			}
		}
	}()

	perfCollector := PerfCollector{
		In:          in,
		RequestCopy: requestCopy,
	}
	return &perfCollector, job
}

// SubmitRun never blocks; when the collector is saturated or already shut
// down, the run is dropped. Requests must not hang on perf bookkeeping.
func (perfCollector *PerfCollector) SubmitRun(run *RequestPerf) {
	select {
	case perfCollector.In <- *run:
	default:
	}
}

func (perfCollector *PerfCollector) GetPerfCopy() *PerfStorage {
	resultChan := make(chan PerfStorage)
	perfCollector.RequestCopy <- resultChan
	perfStorageCopy := <-resultChan
	return &perfStorageCopy
}
