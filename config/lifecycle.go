package config

// Role identifies which process role is starting up. Pools are only
// instantiated (threads actually started) in Worker or SingleProcess
// roles, never in Master (spec §4.8) — the master process only holds
// the parsed Directive table so it can validate configuration and
// pass it down to workers it forks.
type Role int

// Roles.
const (
	Master Role = iota
	Worker
	SingleProcess
)

// ShouldStartPools reports whether pools should be instantiated for
// the given role.
func ShouldStartPools(role Role) bool {
	return role == Worker || role == SingleProcess
}
