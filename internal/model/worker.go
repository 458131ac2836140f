package model

import "time"

// WorkerInfo is a registry entry for a compute node, keyed by its remote
// socket address in the owning registry map.
type WorkerInfo struct {
	Name            string
	MaximalWorkLoad uint32
	LastSeen        time.Time
}
