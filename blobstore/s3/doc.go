// Package s3 stores generator snapshots in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("generators/"),
//	    s3.WithRegion("ap-northeast-1"),
//	)
//
//	gen, err := nananiji.Load(ctx, store, preset.BlobName(preset.Hanshin, true))
//
// CommitStore layers a DynamoDB catalog over Store so that several
// builders can publish new generator versions without overwriting each
// other: every Put uploads a versioned object and then claims the next
// version number with a conditional write.
package s3
