package assoc

//go:generate mockgen -destination "mock_policies.go" -package assoc -source "replacement.go" -source "indexing.go" -self_package "github.com/uarchlab/cachelib/assoc"
