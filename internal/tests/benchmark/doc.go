// Package benchmark measures imgcarve on synthetic disk images of 64 KiB to
// 64 MiB built from real PNG, JPG and GIF encodings.
//
// Scan throughput per mode, and the cost of an unterminated-header flood:
//
//	go test -run=^$ -bench=BenchmarkScan -benchmem ./internal/tests/benchmark/
//
// Writing artifacts raw and re-encoded, merging fragments, digesting:
//
//	go test -run=^$ -bench='Write|Reencode|Merge|Digest' -benchmem ./internal/tests/benchmark/
//
// Use -count=5 and benchstat to compare two revisions.
package benchmark
