package cache

import (
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/jobs"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
)

// PeriodicallySweep clears out expired entries in the background. Writes
// already sweep once the store is big enough; this picks up stores that go
// quiet while still holding dead entries.
func PeriodicallySweep(s *Store) *jobs.Job {
	job := jobs.New("periodically sweep content cache")
	go func() {
		defer job.Finish()

		t := utils.NewInstaTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if removed := s.Sweep(); removed > 0 {
					job.Logger.Info().Int("num removed entries", removed).Msg("Swept expired cache entries")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
