package model

// EntityID is a monotonic, never-reused identifier. The zero value means
// "no entity" and is never allocated by EntityStore.Spawn.
type EntityID int64

const NoEntity EntityID = 0
