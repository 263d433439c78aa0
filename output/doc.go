// Package output writes response bodies to disk.
//
// [Save] writes the body to a temporary file alongside the destination
// path, then renames it into place once every check passed:
//
//	err := output.Save(ctx, bytes.NewReader(body), int64(len(body)), destPath, logger,
//		output.WithChecksum(sha256.New(), expectedHex),
//	)
//
// A failed write never leaves a partial file at destPath.
package output
