package version

// Build metadata, set via -ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)
