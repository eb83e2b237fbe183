// Package config parses the offload subsystem's configuration
// directives and holds the named Pool declarations they produce,
// gating pool instantiation to the worker/single-process roles (spec
// §4.8, §6).
package config

import (
	"strconv"
	"strings"

	"trpc.group/trpc-go/evcore/everr"
)

// Directive is one parsed `thread_pool NAME threads=N max_queue=M`
// line.
type Directive struct {
	Name     string
	Threads  int
	MaxQueue int
}

// Parse tokenizes a single directive line. threads is required
// except for the pool named "default"; max_queue defaults to 65536
// when omitted (spec §4.8, §6).
func Parse(line string) (Directive, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "thread_pool" {
		return Directive{}, everr.Wrapf(everr.ConfigError, "not a thread_pool directive: %q", line)
	}
	d := Directive{Name: fields[1], MaxQueue: defaultMaxQueue}
	haveThreads := false
	for _, kv := range fields[2:] {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return Directive{}, everr.Wrapf(everr.ConfigError, "malformed argument %q in %q", kv, line)
		}
		switch key {
		case "threads":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return Directive{}, everr.Wrapf(everr.ConfigError, "invalid threads value %q in %q", val, line)
			}
			d.Threads = n
			haveThreads = true
		case "max_queue":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return Directive{}, everr.Wrapf(everr.ConfigError, "invalid max_queue value %q in %q", val, line)
			}
			d.MaxQueue = n
		default:
			return Directive{}, everr.Wrapf(everr.ConfigError, "unknown thread_pool argument %q in %q", key, line)
		}
	}
	if !haveThreads && d.Name != defaultPoolName {
		return Directive{}, everr.Wrapf(everr.ConfigError, "thread_pool %q requires threads=N", d.Name)
	}
	if !haveThreads {
		d.Threads = defaultThreads
	}
	return d, nil
}
