// Package buildinfo reports which imgcarve binary is running.
//
// Release builds set Version, Commit and BuildTime with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/imgcarve/internal/infra/buildinfo.Version=v0.3.0" ./cmd/imgcarve
//
// Plain `go build` leaves them at their defaults, in which case Get fills
// Commit and BuildTime from the VCS stamp the toolchain embeds. The values
// surface in `imgcarve version`, `--version` and the imgcarve_build_info
// metric.
package buildinfo
