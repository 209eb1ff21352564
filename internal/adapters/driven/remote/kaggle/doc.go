// Package kaggle implements driven.RemoteRepository against the Kaggle
// datasets API.
//
// The client reads dataset metadata to learn when a dataset was last
// published and downloads the dataset archive, extracting a single CSV
// member. Requests use HTTP basic auth with a username and API key resolved
// from the environment or ~/.kaggle/kaggle.json.
//
// Without usable credentials the client stays inert: Available reports false
// and the other methods return domain.ErrRemoteUnavailable.
package kaggle
