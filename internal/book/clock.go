package book

import "time"

// nowMillis stamps journal entries. Isolated behind a function so tests can
// shadow it if deterministic timestamps are ever needed.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
