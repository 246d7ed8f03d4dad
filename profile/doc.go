// Package profile starts optional runtime profiling for the tfmt command.
//
// Profiling is compiled in only with the "pprof" build tag. Without it,
// [Modes] is empty and [Config.Start] always returns a no-op stopper, so the
// command line flags exist but have no effect.
//
// With the tag, [github.com/pkg/profile] writes one profile per run into the
// configured directory (the cache directory by default):
//
//	go build -tags pprof .
//	./tfmt --pprof-mode cpu render -d data.yaml '{value:,.2f}'
//	go tool pprof -http=: ~/.cache/tfmt/pprof/cpu.pprof
//
// The tag also imports [net/http/pprof], which registers its handlers on
// [net/http.DefaultServeMux] for programs that serve it.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
