// Package nananiji writes any integer as an arithmetic expression over a
// fixed set of seed numbers.
//
// The seeds are the digit splits of a numeral, for example 227 gives the
// groupings [227], [22 7] and [2 2 7]. Building a Generator searches every
// value reachable from the seeds with + - * / up to a search depth, keeps
// the integers, and derives an ordered list of decomposition rules
// (n = q*m, n = q*m + a, n = q*m - s). Generate then answers directly from
// the table or applies the first matching rule and recurses on q.
//
// # Quick Start
//
//	ctx := context.Background()
//	gen, err := nananiji.New(ctx, preset.Nananiji, false)
//	if err != nil { ... }
//
//	expr, err := gen.Generate(2024)
//	fmt.Println(expr, "=", 2024)
//
// # Persistence
//
// Building at depth 3 takes seconds; a built generator can be stored and
// loaded instead:
//
//	store := blobstore.NewLocalStore("./generators")
//	err := gen.Save(ctx, store, preset.BlobName(preset.Nananiji, false))
//	gen, err = nananiji.Load(ctx, store, preset.BlobName(preset.Nananiji, false))
//
// Any blobstore.BlobStore works, including s3.Store and minio.Store.
//
// # Concurrency
//
// A Generator is immutable after construction. Generate may be called from
// any number of goroutines.
package nananiji
