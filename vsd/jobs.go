// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"govsd/geom"
	"govsd/jobs"
)

// minObjectsPerJob is the smallest chunk worth a job. Chunks are multiples
// of four so every job runs full lanes.
const minObjectsPerJob = 4

// SubmitCullingJobs culls boxes against planes into culled, splitting the
// work into one contiguous chunk per worker of pool. The remainder that does
// not fill a chunk runs on the caller after the jobs finished. It returns the
// number of jobs submitted.
func SubmitCullingJobs(pool jobs.Pool, boxes []geom.AABB4, planes []geom.Plane, culled []bool, useSIMD bool) int {
	cull := CullBoxGeneric
	if useSIMD {
		cull = CullBoxSSE
	}
	n := len(boxes)
	threads := 1
	if pool != nil {
		threads = pool.NumWorkerThreads()
	}
	perThread := (n / max(threads, 1)) &^ 3
	if threads <= 1 || perThread < minObjectsPerJob {
		cull(boxes, planes, culled[:n])
		return 0
	}
	for t := 0; t < threads; t++ {
		lo, hi := t*perThread, (t+1)*perThread
		b, c := boxes[lo:hi:hi], culled[lo:hi:hi]
		pool.AddJob(func() {
			cull(b, planes, c)
		})
	}
	pool.Submit()
	pool.Wait()
	if done := threads * perThread; done < n {
		cull(boxes[done:], planes, culled[done:n])
	}
	return threads
}
